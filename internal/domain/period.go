package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Period is an inclusive range of calendar days. From and To are truncated
// to midnight in their own location.
type Period struct {
	From time.Time
	To   time.Time
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func Day(t time.Time) Period {
	d := truncateDay(t)
	return Period{From: d, To: d}
}

func Month(year int, month time.Month, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{From: from, To: from.AddDate(0, 1, -1)}
}

func Year(year int, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return Period{From: from, To: time.Date(year, time.December, 31, 0, 0, 0, 0, loc)}
}

func Range(from, to time.Time) (Period, error) {
	p := Period{From: truncateDay(from), To: truncateDay(to)}
	if p.To.Before(p.From) {
		return Period{}, fmt.Errorf("period end %s is before start %s", p.To.Format(DateLayout), p.From.Format(DateLayout))
	}
	return p, nil
}

// Contains reports whether t falls on any day of the period.
func (p Period) Contains(t time.Time) bool {
	d := truncateDay(t.In(p.From.Location()))
	return !d.Before(p.From) && !d.After(p.To)
}

// End is the first instant after the period.
func (p Period) End() time.Time {
	return p.To.AddDate(0, 0, 1)
}

func (p Period) Days() int {
	n := 0
	for d := p.From; !d.After(p.To); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

func (p Period) String() string {
	if p.From.Equal(p.To) {
		return p.From.Format(DateLayout)
	}
	return p.From.Format(DateLayout) + ".." + p.To.Format(DateLayout)
}
