package domain

type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type StatusCount struct {
	Status ApplicationStatus `json:"status"`
	Label  string            `json:"label"`
	Count  int               `json:"count"`
}

type MonthlyAggregate struct {
	Month            int     `json:"month"`
	ApplicationCount int     `json:"application_count"`
	DisbursedCount   int     `json:"disbursed_count"`
	DisbursedAmount  float64 `json:"disbursed_amount"`
}

type DailyAggregate struct {
	Date            string  `json:"date"`
	DisbursedCount  int     `json:"disbursed_count"`
	DisbursedAmount float64 `json:"disbursed_amount"`
}

type StatementTotals struct {
	Principal     float64 `json:"principal"`
	Interest      float64 `json:"interest"`
	ManagementFee float64 `json:"management_fee"`
	OverdueFee    float64 `json:"overdue_fee"`
	SettlementFee float64 `json:"settlement_fee"`

	InterestVAT      float64 `json:"interest_vat"`
	ManagementFeeVAT float64 `json:"management_fee_vat"`
	OverdueFeeVAT    float64 `json:"overdue_fee_vat"`
	SettlementFeeVAT float64 `json:"settlement_fee_vat"`
}

type Revenue struct {
	Statements     StatementTotals `json:"statements"`
	ServiceFees    float64         `json:"service_fees"`
	ServiceFeeVAT  float64         `json:"service_fee_vat"`
	FeeAdjustments float64         `json:"fee_adjustments"`
	VAT            float64         `json:"vat"`
	Gross          float64         `json:"gross"`
}

type ReportType string

const (
	ReportDaily   ReportType = "daily"
	ReportMonthly ReportType = "monthly"
	ReportYearly  ReportType = "yearly"
	ReportRange   ReportType = "range"
)

// ReportAggregate is everything a report view renders.
type ReportAggregate struct {
	Type ReportType `json:"type"`
	From string     `json:"from"`
	To   string     `json:"to"`

	ApplicationCount int           `json:"application_count"`
	StatusCounts     []StatusCount `json:"status_counts"`

	ReconciledCount int     `json:"reconciled_count"`
	DisbursedCount  int     `json:"disbursed_count"`
	DisbursedAmount float64 `json:"disbursed_amount"`
	AverageTerm     int     `json:"average_term"`

	ByProvince          []NamedValue `json:"by_province"`
	ByProductType       []NamedValue `json:"by_product_type"`
	ByLegalDocumentType []NamedValue `json:"by_legal_document_type"`
	BySourceChannel     []NamedValue `json:"by_source_channel"`

	Revenue Revenue `json:"revenue"`

	DailySeries   []DailyAggregate   `json:"daily_series,omitempty"`
	MonthlySeries []MonthlyAggregate `json:"monthly_series,omitempty"`

	// Partial is set when a source could not be read and the report was
	// built from what was available.
	Partial  bool     `json:"partial"`
	Warnings []string `json:"warnings,omitempty"`
}
