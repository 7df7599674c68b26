// Package aggregate folds application sets into the totals, breakdowns and
// series that report views render.
package aggregate

import (
	"math"
	"sort"
	"strings"

	"loanlook/internal/domain"
)

const (
	UnknownBucket = "Unknown"
	OthersBucket  = "Others"
)

func SumDisbursedAmount(apps []domain.Application) float64 {
	var sum float64
	for _, a := range apps {
		sum += a.DisbursedAmount
	}
	if sum < 0 {
		return 0
	}
	return sum
}

func disbursed(a domain.Application) bool {
	return a.DisbursedAmount > 0
}

func CountDisbursed(apps []domain.Application) int {
	n := 0
	for _, a := range apps {
		if disbursed(a) {
			n++
		}
	}
	return n
}

// CountByStatus returns one entry per status bucket in domain.Statuses
// order. Applications with an unknown status code are not counted.
func CountByStatus(apps []domain.Application) []domain.StatusCount {
	counts := make(map[domain.ApplicationStatus]int, len(domain.Statuses))
	for _, a := range apps {
		counts[a.StatusCode]++
	}

	out := make([]domain.StatusCount, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		out = append(out, domain.StatusCount{Status: s, Label: s.Label(), Count: counts[s]})
	}
	return out
}

type KeyFunc func(domain.Application) string

var (
	ByProvince          KeyFunc = func(a domain.Application) string { return a.Province }
	ByProductType       KeyFunc = func(a domain.Application) string { return a.ProductTypeName }
	ByLegalDocumentType KeyFunc = func(a domain.Application) string { return a.LegalDocumentTypeCode }
	BySourceChannel     KeyFunc = func(a domain.Application) string { return a.SourceChannelName }
)

// GroupByKey counts applications per key in first-seen order. Blank keys
// are counted under UnknownBucket.
func GroupByKey(apps []domain.Application, key KeyFunc) []domain.NamedValue {
	pos := make(map[string]int)
	var out []domain.NamedValue

	for _, a := range apps {
		k := strings.TrimSpace(key(a))
		if k == "" {
			k = UnknownBucket
		}
		i, ok := pos[k]
		if !ok {
			i = len(out)
			pos[k] = i
			out = append(out, domain.NamedValue{Name: k})
		}
		out[i].Value++
	}
	return out
}

// TopNWithOverflow keeps the n largest groups, ties in input order, and
// folds the rest into a trailing OthersBucket. The input is not modified.
func TopNWithOverflow(groups []domain.NamedValue, n int) []domain.NamedValue {
	sorted := append([]domain.NamedValue(nil), groups...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	if n < 0 {
		n = 0
	}
	if len(sorted) <= n {
		return sorted
	}

	out := make([]domain.NamedValue, 0, n+1)
	out = append(out, sorted[:n]...)

	others := domain.NamedValue{Name: OthersBucket}
	for _, g := range sorted[n:] {
		others.Value += g.Value
	}
	return append(out, others)
}

// AverageTerm is the mean approved term of disbursed applications, rounded
// to the nearest month.
func AverageTerm(apps []domain.Application) int {
	var total, n int
	for _, a := range apps {
		if !disbursed(a) {
			continue
		}
		total += a.ApprovedTermMonths
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}
