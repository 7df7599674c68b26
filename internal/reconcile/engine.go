// Package reconcile applies disbursement adjustments to a snapshot of
// loan-origination records.
//
// Adjustments are applied strictly in slice order: a later adjustment sees
// the effect of every earlier one, including applications synthesized by
// it. The input snapshot is never modified.
package reconcile

import (
	"loanlook/internal/domain"
)

type options struct {
	workingSetTemplate bool
	defaults           Defaults
}

// Option configures a reconciliation run.
type Option func(*options)

// WithWorkingSetTemplate makes synthesized applications inherit blank
// attributes from the first application of the current working set instead
// of the configured defaults.
func WithWorkingSetTemplate() Option {
	return func(o *options) { o.workingSetTemplate = true }
}

// WithDefaults sets the attributes given to synthesized applications.
func WithDefaults(d Defaults) Option {
	return func(o *options) { o.defaults = d }
}

// Result is the reconciled set plus what happened to each adjustment that
// did not apply cleanly. The diagnostics never influence Applications.
type Result struct {
	Applications []domain.Application

	// negative adjustments whose target is not in the working set
	Unmatched []domain.Adjustment
	// negative adjustments larger than the remaining balance
	OverCancelled []domain.Adjustment
	// codes of synthesized applications, in creation order
	Synthesized []string
}

// Reconcile returns base with adjustments applied.
func Reconcile(base []domain.Application, adjustments []domain.Adjustment, opts ...Option) []domain.Application {
	return ReconcileWithDiagnostics(base, adjustments, opts...).Applications
}

// ReconcileWithDiagnostics is Reconcile that also reports the adjustments
// it could not apply cleanly.
func ReconcileWithDiagnostics(base []domain.Application, adjustments []domain.Adjustment, opts ...Option) Result {
	o := options{defaults: DefaultSynthetic}
	for _, opt := range opts {
		opt(&o)
	}

	ws := newWorkingSet(base)
	var res Result

	for _, adj := range adjustments {
		idx := ws.find(adj.TargetCode)

		switch {
		case adj.SignedAmount > 0:
			if idx >= 0 {
				rec := &ws.apps[idx]
				rec.DisbursedAmount += adj.SignedAmount
				rec.DisbursementDate = timeRef(adj.EffectiveDate)
				continue
			}

			def := o.defaults
			if o.workingSetTemplate {
				if first, ok := ws.first(); ok {
					def = defaultsFrom(first)
				} else {
					def = Defaults{}
				}
			}
			ws.append(SyntheticRecord(ws.nextID(), adj, def))
			res.Synthesized = append(res.Synthesized, adj.TargetCode)

		case adj.SignedAmount < 0:
			if idx < 0 {
				res.Unmatched = append(res.Unmatched, adj)
				continue
			}

			reduction := -adj.SignedAmount
			rec := &ws.apps[idx]
			if reduction >= rec.DisbursedAmount {
				if reduction > rec.DisbursedAmount {
					res.OverCancelled = append(res.OverCancelled, adj)
				}
				ws.remove(idx)
				continue
			}
			rec.DisbursedAmount -= reduction
		}
	}

	res.Applications = ws.collect()
	return res
}
