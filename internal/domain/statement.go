package domain

import "time"

type Statement struct {
	ID              string
	ApplicationCode string
	PaymentDate     *time.Time

	Principal     float64
	Interest      float64
	ManagementFee float64
	OverdueFee    float64
	SettlementFee float64

	InterestVAT      float64
	ManagementFeeVAT float64
	OverdueFeeVAT    float64
	SettlementFeeVAT float64
}

type ServiceFee struct {
	ID              string
	ApplicationCode string
	PaymentDate     *time.Time
	Amount          float64
	VAT             float64
}
