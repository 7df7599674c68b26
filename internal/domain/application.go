package domain

import "time"

type ApplicationStatus int

const (
	StatusCreated ApplicationStatus = iota
	StatusPendingReview
	StatusInfoRequested
	StatusRejected
	StatusApproved
	StatusContractSigned
	StatusDisbursed
)

// Statuses lists every status bucket in report order.
var Statuses = []ApplicationStatus{
	StatusCreated,
	StatusPendingReview,
	StatusInfoRequested,
	StatusRejected,
	StatusApproved,
	StatusContractSigned,
	StatusDisbursed,
}

var statusLabels = map[ApplicationStatus]string{
	StatusCreated:        "Created",
	StatusPendingReview:  "Pending review",
	StatusInfoRequested:  "Info requested",
	StatusRejected:       "Rejected",
	StatusApproved:       "Approved",
	StatusContractSigned: "Contract signed",
	StatusDisbursed:      "Disbursed",
}

func (s ApplicationStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return "Unknown"
}

func (s ApplicationStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Application is a loan-origination record as known at fetch time.
// Synthesized records carry a negative ID.
type Application struct {
	ID           int64
	Code         string
	CustomerName string

	LoanTermMonths     int
	ApprovedTermMonths int
	DisbursedAmount    float64
	CommissionAmount   float64

	StatusCode ApplicationStatus

	ProductTypeName       string
	Province              string
	Country               string
	LegalDocumentTypeCode string
	SourceChannelName     string

	CreatedAt        time.Time
	DisbursementDate *time.Time
}

func (a Application) Synthetic() bool {
	return a.ID < 0
}
