package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"loanlook/internal/domain"
	"loanlook/internal/repository"

	"github.com/rs/zerolog"
)

type fakeApps struct {
	mu        sync.Mutex
	created   []domain.Application
	disbursed []domain.Application
	err       error
	filters   []repository.ApplicationsFilter
}

func (f *fakeApps) List(ctx context.Context, filter repository.ApplicationsFilter) ([]domain.Application, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if filter.DisbursedFrom != nil {
		return f.disbursed, nil
	}
	return f.created, nil
}

type fakeAdjustments struct {
	items []domain.Adjustment
	err   error
}

func (f *fakeAdjustments) List(ctx context.Context, filter repository.AdjustmentsFilter) ([]domain.Adjustment, error) {
	return f.items, f.err
}

type fakeLedger struct {
	statements []domain.Statement
	fees       []domain.ServiceFee
	err        error
}

func (f *fakeLedger) ListStatements(ctx context.Context, filter repository.PaymentsFilter) ([]domain.Statement, error) {
	return f.statements, f.err
}

func (f *fakeLedger) ListServiceFees(ctx context.Context, filter repository.PaymentsFilter) ([]domain.ServiceFee, error) {
	return f.fees, f.err
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(t time.Time) *time.Time {
	return &t
}

func disbursedApp(id int64, code, province string, amount float64, day time.Time) domain.Application {
	return domain.Application{
		ID:                 id,
		Code:               code,
		Province:           province,
		DisbursedAmount:    amount,
		ApprovedTermMonths: 12,
		StatusCode:         domain.StatusDisbursed,
		CreatedAt:          day,
		DisbursementDate:   at(day),
	}
}

func correction(id, code string, amount float64, kind domain.AdjustmentKind, day time.Time) domain.Adjustment {
	return domain.Adjustment{ID: id, TargetCode: code, SignedAmount: amount, Kind: kind, EffectiveDate: day}
}

func newTestReportService(apps *fakeApps, adjs *fakeAdjustments, ledger *fakeLedger, top int) *ReportService {
	return NewReportService(apps, adjs, ledger, zerolog.Nop(), ReportOptions{TopProvinces: top, Location: time.UTC})
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReportService_Daily(t *testing.T) {
	day := date(2024, time.March, 5)
	apps := &fakeApps{
		disbursed: []domain.Application{
			disbursedApp(1, "A", "Hanoi", 100, day),
			disbursedApp(2, "B", "Hue", 50, day),
		},
		created: []domain.Application{
			{ID: 1, Code: "A", StatusCode: domain.StatusApproved, CreatedAt: day},
			{ID: 3, Code: "C", StatusCode: domain.StatusRejected, CreatedAt: day},
		},
	}
	adjs := &fakeAdjustments{items: []domain.Adjustment{
		correction("a1", "A", 20, domain.AdjustmentDisbursement, day),
		correction("a2", "B", -50, domain.AdjustmentDisbursement, day),
		correction("a3", "X", 30, domain.AdjustmentDisbursement, day),
		correction("a4", "Z", -10, domain.AdjustmentDisbursement, day),
		correction("a5", "A", 5, domain.AdjustmentServiceFee, day),
		correction("a6", "A", 999, domain.AdjustmentDisbursement, day.AddDate(0, 0, 1)),
	}}
	ledger := &fakeLedger{
		statements: []domain.Statement{{PaymentDate: at(day), Interest: 10, InterestVAT: 1}},
		fees:       []domain.ServiceFee{{PaymentDate: at(day), Amount: 3, VAT: 0.3}},
	}

	svc := newTestReportService(apps, adjs, ledger, 10)
	got, err := svc.Daily(context.Background(), day.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Type != domain.ReportDaily || got.From != "2024-03-05" || got.To != "2024-03-05" {
		t.Errorf("unexpected period %s %s..%s", got.Type, got.From, got.To)
	}
	if got.ApplicationCount != 2 {
		t.Errorf("expected 2 applications, got %d", got.ApplicationCount)
	}
	if got.StatusCounts[domain.StatusRejected].Count != 1 || got.StatusCounts[domain.StatusApproved].Count != 1 {
		t.Errorf("unexpected status counts %+v", got.StatusCounts)
	}
	if got.ReconciledCount != 2 {
		t.Errorf("expected 2 reconciled records, got %d", got.ReconciledCount)
	}
	if !almostEqual(got.DisbursedAmount, 150) {
		t.Errorf("expected disbursed 150, got %v", got.DisbursedAmount)
	}
	if !almostEqual(got.Revenue.FeeAdjustments, 5) {
		t.Errorf("expected fee adjustments 5, got %v", got.Revenue.FeeAdjustments)
	}
	if !almostEqual(got.Revenue.Gross, 18) {
		t.Errorf("expected gross 18, got %v", got.Revenue.Gross)
	}
	if !almostEqual(got.Revenue.VAT, 1.3) {
		t.Errorf("expected vat 1.3, got %v", got.Revenue.VAT)
	}
	if got.Partial {
		t.Error("report should not be partial")
	}
	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "a4") {
		t.Errorf("expected one warning for a4, got %v", got.Warnings)
	}
	if got.DailySeries != nil || got.MonthlySeries != nil {
		t.Error("daily report has no series")
	}

	for _, f := range apps.filters {
		from, to := f.CreatedFrom, f.CreatedTo
		if from == nil {
			from, to = f.DisbursedFrom, f.DisbursedTo
		}
		if !from.Equal(day) || !to.Equal(day.AddDate(0, 0, 1)) {
			t.Errorf("unexpected bounds %v..%v", from, to)
		}
	}
}

func TestReportService_DailyDoesNotFoldProvinces(t *testing.T) {
	day := date(2024, time.March, 5)
	apps := &fakeApps{disbursed: []domain.Application{
		disbursedApp(1, "A", "P1", 10, day),
		disbursedApp(2, "B", "P2", 20, day),
		disbursedApp(3, "C", "P3", 30, day),
	}}

	svc := newTestReportService(apps, &fakeAdjustments{}, &fakeLedger{}, 1)
	got, err := svc.Daily(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.ByProvince) != 3 {
		t.Errorf("expected 3 provinces, got %+v", got.ByProvince)
	}
}

func TestReportService_MonthlyFoldsProvinces(t *testing.T) {
	day := date(2024, time.March, 5)
	apps := &fakeApps{disbursed: []domain.Application{
		disbursedApp(1, "A", "P1", 10, day),
		disbursedApp(2, "B", "P2", 20, day),
		disbursedApp(3, "C", "P3", 30, day),
		disbursedApp(4, "D", "P3", 1, day),
	}}

	svc := newTestReportService(apps, &fakeAdjustments{}, &fakeLedger{}, 1)
	got, err := svc.Monthly(context.Background(), 2024, time.March)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.NamedValue{{Name: "P3", Value: 2}, {Name: "Others", Value: 2}}
	if len(got.ByProvince) != len(want) {
		t.Fatalf("expected %+v, got %+v", want, got.ByProvince)
	}
	for i := range want {
		if got.ByProvince[i] != want[i] {
			t.Errorf("at %d expected %+v, got %+v", i, want[i], got.ByProvince[i])
		}
	}
	if len(got.DailySeries) != 31 {
		t.Fatalf("expected 31 days, got %d", len(got.DailySeries))
	}
	if got.DailySeries[4].DisbursedCount != 4 || !almostEqual(got.DailySeries[4].DisbursedAmount, 61) {
		t.Errorf("unexpected day bucket %+v", got.DailySeries[4])
	}
}

func TestReportService_Yearly(t *testing.T) {
	jan := date(2024, time.January, 10)
	jun := date(2024, time.June, 3)
	apps := &fakeApps{
		created: []domain.Application{
			disbursedApp(1, "A", "P", 100, jan),
			disbursedApp(2, "B", "P", 40, jun),
		},
		disbursed: []domain.Application{
			disbursedApp(1, "A", "P", 100, jan),
			disbursedApp(2, "B", "P", 40, jun),
		},
	}
	adjs := &fakeAdjustments{items: []domain.Adjustment{
		correction("a1", "B", -15, domain.AdjustmentDisbursement, jun),
	}}

	svc := newTestReportService(apps, adjs, &fakeLedger{}, 10)
	got, err := svc.Yearly(context.Background(), 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.MonthlySeries) != 12 {
		t.Fatalf("expected 12 months, got %d", len(got.MonthlySeries))
	}
	if !almostEqual(got.MonthlySeries[0].DisbursedAmount, 100) || !almostEqual(got.MonthlySeries[5].DisbursedAmount, 25) {
		t.Errorf("unexpected monthly series %+v", got.MonthlySeries)
	}

	var sum float64
	for _, m := range got.MonthlySeries {
		sum += m.DisbursedAmount
	}
	if !almostEqual(sum, got.DisbursedAmount) {
		t.Errorf("monthly sum %v does not match annual %v", sum, got.DisbursedAmount)
	}
}

func TestReportService_YearlyTotalsFollowCreationYear(t *testing.T) {
	// created on New Year's Eve, disbursed in January
	carried := disbursedApp(1, "A", "P1", 100, date(2024, time.January, 5))
	carried.CreatedAt = date(2023, time.December, 31)
	feb := disbursedApp(2, "B", "P2", 40, date(2024, time.February, 12))

	apps := &fakeApps{
		created:   []domain.Application{feb},
		disbursed: []domain.Application{carried, feb},
	}

	svc := newTestReportService(apps, &fakeAdjustments{}, &fakeLedger{}, 10)
	got, err := svc.Yearly(context.Background(), 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sum float64
	var count int
	for _, m := range got.MonthlySeries {
		sum += m.DisbursedAmount
		count += m.DisbursedCount
	}
	if !almostEqual(sum, got.DisbursedAmount) || count != got.DisbursedCount {
		t.Errorf("series %v/%d does not match totals %v/%d", sum, count, got.DisbursedAmount, got.DisbursedCount)
	}
	if !almostEqual(got.DisbursedAmount, 40) || got.DisbursedCount != 1 {
		t.Errorf("expected 40 over one disbursement, got %v over %d", got.DisbursedAmount, got.DisbursedCount)
	}
	if got.ReconciledCount != 1 || len(got.ByProvince) != 1 || got.ByProvince[0].Name != "P2" {
		t.Errorf("expected breakdowns over the year's applications, got %d %+v", got.ReconciledCount, got.ByProvince)
	}
}

func TestReportService_YearlyUsesReportLocation(t *testing.T) {
	ict := time.FixedZone("ICT", 7*3600)
	// 2024-01-01 03:00 in ICT
	app := disbursedApp(1, "A", "P", 100, time.Date(2023, time.December, 31, 20, 0, 0, 0, time.UTC))
	apps := &fakeApps{created: []domain.Application{app}, disbursed: []domain.Application{app}}

	svc := NewReportService(apps, &fakeAdjustments{}, &fakeLedger{}, zerolog.Nop(), ReportOptions{TopProvinces: 10, Location: ict})
	got, err := svc.Yearly(context.Background(), 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.MonthlySeries[0].ApplicationCount != 1 || !almostEqual(got.MonthlySeries[0].DisbursedAmount, 100) {
		t.Errorf("expected the application in January, got %+v", got.MonthlySeries[0])
	}
	if !almostEqual(got.DisbursedAmount, 100) {
		t.Errorf("expected 100, got %v", got.DisbursedAmount)
	}
}

func TestReportService_RangeRejectsInvertedPeriod(t *testing.T) {
	svc := newTestReportService(&fakeApps{}, &fakeAdjustments{}, &fakeLedger{}, 10)

	_, err := svc.Range(context.Background(), date(2024, 3, 10), date(2024, 3, 1))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestReportService_RangeSeries(t *testing.T) {
	from := date(2024, time.February, 27)
	apps := &fakeApps{disbursed: []domain.Application{disbursedApp(1, "A", "P", 10, date(2024, time.March, 1))}}

	svc := newTestReportService(apps, &fakeAdjustments{}, &fakeLedger{}, 10)
	got, err := svc.Range(context.Background(), from, date(2024, time.March, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.DailySeries) != 5 {
		t.Fatalf("expected 5 days, got %d", len(got.DailySeries))
	}
	if got.DailySeries[3].Date != "2024-03-01" || got.DailySeries[3].DisbursedCount != 1 {
		t.Errorf("unexpected series %+v", got.DailySeries)
	}
}

func TestReportService_DegradesOnSourceFailure(t *testing.T) {
	day := date(2024, time.March, 5)
	apps := &fakeApps{err: errors.New("connection refused")}
	ledger := &fakeLedger{fees: []domain.ServiceFee{{PaymentDate: at(day), Amount: 7}}}

	svc := newTestReportService(apps, &fakeAdjustments{}, ledger, 10)
	got, err := svc.Daily(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !got.Partial {
		t.Error("expected partial report")
	}
	if len(got.Warnings) != 2 || !strings.HasPrefix(got.Warnings[0], "applications") || !strings.HasPrefix(got.Warnings[1], "disbursements") {
		t.Errorf("unexpected warnings %v", got.Warnings)
	}
	if got.ApplicationCount != 0 || len(got.StatusCounts) != 7 {
		t.Errorf("expected empty counts, got %+v", got)
	}
	if !almostEqual(got.Revenue.ServiceFees, 7) {
		t.Errorf("expected service fees from the healthy source, got %v", got.Revenue.ServiceFees)
	}
}

func TestReportService_CancellationAborts(t *testing.T) {
	apps := &fakeApps{err: context.Canceled}

	svc := newTestReportService(apps, &fakeAdjustments{}, &fakeLedger{}, 10)
	_, err := svc.Daily(context.Background(), date(2024, 1, 1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReportRequest_Period(t *testing.T) {
	tests := []struct {
		name     string
		req      ReportRequest
		from, to string
		wantErr  bool
	}{
		{name: "daily", req: ReportRequest{Type: domain.ReportDaily, Date: "2024-02-29"}, from: "2024-02-29", to: "2024-02-29"},
		{name: "monthly", req: ReportRequest{Type: domain.ReportMonthly, Year: 2024, Month: 2}, from: "2024-02-01", to: "2024-02-29"},
		{name: "yearly", req: ReportRequest{Type: domain.ReportYearly, Year: 2023}, from: "2023-01-01", to: "2023-12-31"},
		{name: "range", req: ReportRequest{Type: domain.ReportRange, From: "2024-01-30", To: "2024-02-02"}, from: "2024-01-30", to: "2024-02-02"},
		{name: "daily without date", req: ReportRequest{Type: domain.ReportDaily}, wantErr: true},
		{name: "bad date", req: ReportRequest{Type: domain.ReportDaily, Date: "05.03.2024"}, wantErr: true},
		{name: "month out of range", req: ReportRequest{Type: domain.ReportMonthly, Year: 2024, Month: 13}, wantErr: true},
		{name: "inverted range", req: ReportRequest{Type: domain.ReportRange, From: "2024-02-02", To: "2024-01-30"}, wantErr: true},
		{name: "unknown type", req: ReportRequest{Type: "weekly"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.req.Period(time.UTC)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Fatalf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := p.From.Format(domain.DateLayout); got != tt.from {
				t.Errorf("expected from %s, got %s", tt.from, got)
			}
			if got := p.To.Format(domain.DateLayout); got != tt.to {
				t.Errorf("expected to %s, got %s", tt.to, got)
			}
		})
	}
}
