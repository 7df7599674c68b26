package aggregate

import (
	"time"

	"loanlook/internal/domain"
	"loanlook/internal/reconcile"
)

// MonthBucket splits a year of applications by creation month and
// reconciles every month on its own, against only the disbursement
// adjustments effective in that month. Months never share adjustments.
// Month boundaries are taken in loc; nil means UTC.
func MonthBucket(apps []domain.Application, adjustments []domain.Adjustment, year int, loc *time.Location, opts ...reconcile.Option) [12]domain.MonthlyAggregate {
	if loc == nil {
		loc = time.UTC
	}

	var byMonth [12][]domain.Application
	for _, a := range apps {
		c := a.CreatedAt.In(loc)
		if c.Year() != year {
			continue
		}
		m := c.Month() - 1
		byMonth[m] = append(byMonth[m], a)
	}

	var out [12]domain.MonthlyAggregate
	for i := range out {
		period := domain.Month(year, time.Month(i+1), loc)
		monthAdj := reconcile.FilterAdjustments(adjustments, period, domain.AdjustmentDisbursement)
		reconciled := reconcile.Reconcile(byMonth[i], monthAdj, opts...)

		out[i] = domain.MonthlyAggregate{
			Month:            i + 1,
			ApplicationCount: len(byMonth[i]),
			DisbursedCount:   CountDisbursed(reconciled),
			DisbursedAmount:  SumDisbursedAmount(reconciled),
		}
	}
	return out
}

// DayBucket returns one entry per day of p with the disbursed applications
// attributed to that day. Applications without a disbursement date, or
// disbursed outside p, are left out.
func DayBucket(apps []domain.Application, p domain.Period) []domain.DailyAggregate {
	out := make([]domain.DailyAggregate, 0, p.Days())
	pos := make(map[string]int)
	for d := p.From; !d.After(p.To); d = d.AddDate(0, 0, 1) {
		key := d.Format(domain.DateLayout)
		pos[key] = len(out)
		out = append(out, domain.DailyAggregate{Date: key})
	}

	for _, a := range apps {
		if a.DisbursementDate == nil || !disbursed(a) {
			continue
		}
		key := a.DisbursementDate.In(p.From.Location()).Format(domain.DateLayout)
		i, ok := pos[key]
		if !ok {
			continue
		}
		out[i].DisbursedCount++
		out[i].DisbursedAmount += a.DisbursedAmount
	}
	return out
}
