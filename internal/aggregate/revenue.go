package aggregate

import "loanlook/internal/domain"

// SumStatements totals the statements paid within p.
func SumStatements(stmts []domain.Statement, p domain.Period) domain.StatementTotals {
	var t domain.StatementTotals
	for _, s := range stmts {
		if s.PaymentDate == nil || !p.Contains(*s.PaymentDate) {
			continue
		}
		t.Principal += s.Principal
		t.Interest += s.Interest
		t.ManagementFee += s.ManagementFee
		t.OverdueFee += s.OverdueFee
		t.SettlementFee += s.SettlementFee
		t.InterestVAT += s.InterestVAT
		t.ManagementFeeVAT += s.ManagementFeeVAT
		t.OverdueFeeVAT += s.OverdueFeeVAT
		t.SettlementFeeVAT += s.SettlementFeeVAT
	}
	return t
}

func SumServiceFees(fees []domain.ServiceFee, p domain.Period) (amount, vat float64) {
	for _, f := range fees {
		if f.PaymentDate == nil || !p.Contains(*f.PaymentDate) {
			continue
		}
		amount += f.Amount
		vat += f.VAT
	}
	return amount, vat
}

// SumFeeAdjustments adds up the service-fee adjustments effective within p.
func SumFeeAdjustments(adjustments []domain.Adjustment, p domain.Period) float64 {
	var sum float64
	for _, a := range adjustments {
		if a.Kind != domain.AdjustmentServiceFee || !p.Contains(a.EffectiveDate) {
			continue
		}
		sum += a.SignedAmount
	}
	return sum
}

func BuildRevenue(t domain.StatementTotals, serviceFees, serviceFeeVAT, feeAdjustments float64) domain.Revenue {
	return domain.Revenue{
		Statements:     t,
		ServiceFees:    serviceFees,
		ServiceFeeVAT:  serviceFeeVAT,
		FeeAdjustments: feeAdjustments,
		VAT:            t.InterestVAT + t.ManagementFeeVAT + t.OverdueFeeVAT + t.SettlementFeeVAT + serviceFeeVAT,
		Gross:          t.Interest + t.ManagementFee + t.OverdueFee + t.SettlementFee + serviceFees + feeAdjustments,
	}
}
