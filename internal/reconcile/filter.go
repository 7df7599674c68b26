package reconcile

import "loanlook/internal/domain"

// FilterAdjustments keeps adjustments of the given kind whose effective date
// falls in p, preserving order. Entries without a target or with a zero
// amount are dropped.
func FilterAdjustments(adjustments []domain.Adjustment, p domain.Period, kind domain.AdjustmentKind) []domain.Adjustment {
	var out []domain.Adjustment
	for _, a := range adjustments {
		if a.Kind != kind || a.TargetCode == "" || a.SignedAmount == 0 {
			continue
		}
		if !p.Contains(a.EffectiveDate) {
			continue
		}
		out = append(out, a)
	}
	return out
}
