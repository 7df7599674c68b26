package reconcile

import (
	"time"

	"loanlook/internal/domain"
)

// Defaults fills the attributes of a synthesized application that the
// adjustment leaves blank.
type Defaults struct {
	Country               string
	LegalDocumentTypeCode string
	ProductTypeName       string
	Province              string
	SourceChannelName     string
	CustomerName          string
	Status                domain.ApplicationStatus
}

var DefaultSynthetic = Defaults{
	Status: domain.StatusDisbursed,
}

func defaultsFrom(a domain.Application) Defaults {
	return Defaults{
		Country:               a.Country,
		LegalDocumentTypeCode: a.LegalDocumentTypeCode,
		ProductTypeName:       a.ProductTypeName,
		Province:              a.Province,
		SourceChannelName:     a.SourceChannelName,
		CustomerName:          a.CustomerName,
		Status:                a.StatusCode,
	}
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// SyntheticRecord builds the application that stands in for a disbursement
// known only through adj.
func SyntheticRecord(id int64, adj domain.Adjustment, def Defaults) domain.Application {
	effective := adj.EffectiveDate
	return domain.Application{
		ID:                    id,
		Code:                  adj.TargetCode,
		CustomerName:          orDefault(adj.CustomerName, def.CustomerName),
		LoanTermMonths:        adj.TermMonths,
		ApprovedTermMonths:    adj.TermMonths,
		DisbursedAmount:       adj.SignedAmount,
		CommissionAmount:      adj.CommissionAmount,
		StatusCode:            def.Status,
		ProductTypeName:       orDefault(adj.ProductTypeName, def.ProductTypeName),
		Province:              orDefault(adj.Province, def.Province),
		Country:               orDefault(adj.Country, def.Country),
		LegalDocumentTypeCode: orDefault(adj.LegalDocumentTypeCode, def.LegalDocumentTypeCode),
		SourceChannelName:     orDefault(adj.SourceChannelName, def.SourceChannelName),
		CreatedAt:             effective,
		DisbursementDate:      timeRef(effective),
	}
}

func timeRef(t time.Time) *time.Time {
	return &t
}
