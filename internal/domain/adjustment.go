package domain

import "time"

type AdjustmentKind string

const (
	AdjustmentDisbursement AdjustmentKind = "disbursement"
	AdjustmentServiceFee   AdjustmentKind = "service_fee"
)

func (k AdjustmentKind) Valid() bool {
	return k == AdjustmentDisbursement || k == AdjustmentServiceFee
}

// Adjustment is a signed correction to one application's disbursed amount
// (or to the service-fee total) attributed to EffectiveDate.
type Adjustment struct {
	ID            string
	TargetCode    string
	EffectiveDate time.Time
	SignedAmount  float64
	Kind          AdjustmentKind

	// used only when no application with TargetCode exists
	TermMonths            int
	CommissionAmount      float64
	Country               string
	LegalDocumentTypeCode string
	Province              string
	ProductTypeName       string
	SourceChannelName     string
	CustomerName          string

	Note      *string
	CreatedBy *int64
	CreatedAt *time.Time
	UpdatedAt *time.Time
}
