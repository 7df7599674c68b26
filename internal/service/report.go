package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"loanlook/internal/aggregate"
	"loanlook/internal/domain"
	"loanlook/internal/reconcile"
	"loanlook/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidRequest = errors.New("invalid report request")

type ApplicationSource interface {
	List(ctx context.Context, f repository.ApplicationsFilter) ([]domain.Application, error)
}

type AdjustmentSource interface {
	List(ctx context.Context, f repository.AdjustmentsFilter) ([]domain.Adjustment, error)
}

type LedgerSource interface {
	ListStatements(ctx context.Context, f repository.PaymentsFilter) ([]domain.Statement, error)
	ListServiceFees(ctx context.Context, f repository.PaymentsFilter) ([]domain.ServiceFee, error)
}

type ReportOptions struct {
	TopProvinces int
	Location     *time.Location
	Reconcile    []reconcile.Option
}

type ReportService struct {
	apps        ApplicationSource
	adjustments AdjustmentSource
	ledger      LedgerSource
	log         zerolog.Logger

	topProvinces int
	loc          *time.Location
	reconcile    []reconcile.Option
}

func NewReportService(apps ApplicationSource, adjustments AdjustmentSource, ledger LedgerSource, log zerolog.Logger, opts ReportOptions) *ReportService {
	top := opts.TopProvinces
	if top <= 0 {
		top = 10
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		apps:         apps,
		adjustments:  adjustments,
		ledger:       ledger,
		log:          log.With().Str("component", "report").Logger(),
		topProvinces: top,
		loc:          loc,
		reconcile:    opts.Reconcile,
	}
}

func (s *ReportService) Location() *time.Location {
	return s.loc
}

// ReportRequest names one report. Which of the date fields are required
// depends on Type.
type ReportRequest struct {
	Type  domain.ReportType `json:"type" validate:"required,oneof=daily monthly yearly range"`
	Date  string            `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Year  int               `json:"year,omitempty" validate:"omitempty,gte=1900,lte=9999"`
	Month int               `json:"month,omitempty" validate:"omitempty,gte=1,lte=12"`
	From  string            `json:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To    string            `json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r ReportRequest) Period(loc *time.Location) (domain.Period, error) {
	if err := validate.Struct(r); err != nil {
		return domain.Period{}, fmt.Errorf("%w: %v", ErrInvalidRequest, fieldErrors(err))
	}

	parse := func(field, v string) (time.Time, error) {
		if v == "" {
			return time.Time{}, fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
		}
		t, err := time.ParseInLocation(domain.DateLayout, v, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s: %v", ErrInvalidRequest, field, err)
		}
		return t, nil
	}

	switch r.Type {
	case domain.ReportDaily:
		d, err := parse("date", r.Date)
		if err != nil {
			return domain.Period{}, err
		}
		return domain.Day(d), nil
	case domain.ReportMonthly:
		if r.Year == 0 || r.Month == 0 {
			return domain.Period{}, fmt.Errorf("%w: year and month are required", ErrInvalidRequest)
		}
		return domain.Month(r.Year, time.Month(r.Month), loc), nil
	case domain.ReportYearly:
		if r.Year == 0 {
			return domain.Period{}, fmt.Errorf("%w: year is required", ErrInvalidRequest)
		}
		return domain.Year(r.Year, loc), nil
	case domain.ReportRange:
		from, err := parse("from", r.From)
		if err != nil {
			return domain.Period{}, err
		}
		to, err := parse("to", r.To)
		if err != nil {
			return domain.Period{}, err
		}
		p, err := domain.Range(from, to)
		if err != nil {
			return domain.Period{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return p, nil
	}
	return domain.Period{}, fmt.Errorf("%w: unknown report type %q", ErrInvalidRequest, r.Type)
}

// Build dispatches req to the matching assembler.
func (s *ReportService) Build(ctx context.Context, req ReportRequest) (domain.ReportAggregate, error) {
	p, err := req.Period(s.loc)
	if err != nil {
		return domain.ReportAggregate{}, err
	}
	switch req.Type {
	case domain.ReportDaily:
		return s.Daily(ctx, p.From)
	case domain.ReportMonthly:
		return s.Monthly(ctx, req.Year, time.Month(req.Month))
	case domain.ReportYearly:
		return s.Yearly(ctx, req.Year)
	default:
		return s.Range(ctx, p.From, p.To)
	}
}

func (s *ReportService) Daily(ctx context.Context, day time.Time) (domain.ReportAggregate, error) {
	p := domain.Day(day.In(s.loc))
	src, err := s.fetch(ctx, p)
	if err != nil {
		return domain.ReportAggregate{}, err
	}
	return s.assemble(domain.ReportDaily, p, src, src.disbursed, 0), nil
}

func (s *ReportService) Monthly(ctx context.Context, year int, month time.Month) (domain.ReportAggregate, error) {
	if month < time.January || month > time.December {
		return domain.ReportAggregate{}, fmt.Errorf("%w: month %d out of range", ErrInvalidRequest, month)
	}
	p := domain.Month(year, month, s.loc)
	src, err := s.fetch(ctx, p)
	if err != nil {
		return domain.ReportAggregate{}, err
	}
	agg := s.assemble(domain.ReportMonthly, p, src, src.disbursed, s.topProvinces)
	agg.DailySeries = aggregate.DayBucket(src.reconciled, p)
	return agg, nil
}

func (s *ReportService) Yearly(ctx context.Context, year int) (domain.ReportAggregate, error) {
	p := domain.Year(year, s.loc)
	src, err := s.fetch(ctx, p)
	if err != nil {
		return domain.ReportAggregate{}, err
	}
	// the year is read by creation month, so totals and breakdowns cover the
	// same applications as the series
	agg := s.assemble(domain.ReportYearly, p, src, src.created, s.topProvinces)
	months := aggregate.MonthBucket(src.created, src.adjustments, year, s.loc, s.reconcile...)
	agg.MonthlySeries = months[:]

	// months reconcile in isolation, so the totals are their sum
	agg.DisbursedCount, agg.DisbursedAmount = 0, 0
	for _, m := range months {
		agg.DisbursedCount += m.DisbursedCount
		agg.DisbursedAmount += m.DisbursedAmount
	}
	return agg, nil
}

func (s *ReportService) Range(ctx context.Context, from, to time.Time) (domain.ReportAggregate, error) {
	p, err := domain.Range(from.In(s.loc), to.In(s.loc))
	if err != nil {
		return domain.ReportAggregate{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	src, err := s.fetch(ctx, p)
	if err != nil {
		return domain.ReportAggregate{}, err
	}
	agg := s.assemble(domain.ReportRange, p, src, src.disbursed, s.topProvinces)
	agg.DailySeries = aggregate.DayBucket(src.reconciled, p)
	return agg, nil
}

type sources struct {
	created     []domain.Application
	disbursed   []domain.Application
	adjustments []domain.Adjustment
	statements  []domain.Statement
	fees        []domain.ServiceFee

	reconciled []domain.Application
	notices    []string
}

// fetch loads every source for p concurrently. A failing source leaves its
// slice empty and adds a notice; only cancellation aborts the report.
func (s *ReportService) fetch(ctx context.Context, p domain.Period) (*sources, error) {
	from, to := p.From, p.End()
	src := &sources{}

	var mu sync.Mutex
	degrade := func(what string, err error) error {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		s.log.Error().Err(err).Str("source", what).Str("period", p.String()).Msg("source unavailable")
		mu.Lock()
		src.notices = append(src.notices, fmt.Sprintf("%s could not be loaded; figures are incomplete", what))
		mu.Unlock()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		apps, err := s.apps.List(gctx, repository.ApplicationsFilter{CreatedFrom: &from, CreatedTo: &to})
		if err != nil {
			return degrade("applications", err)
		}
		src.created = apps
		return nil
	})
	g.Go(func() error {
		apps, err := s.apps.List(gctx, repository.ApplicationsFilter{DisbursedFrom: &from, DisbursedTo: &to})
		if err != nil {
			return degrade("disbursements", err)
		}
		src.disbursed = apps
		return nil
	})
	g.Go(func() error {
		adjs, err := s.adjustments.List(gctx, repository.AdjustmentsFilter{})
		if err != nil {
			return degrade("adjustments", err)
		}
		src.adjustments = adjs
		return nil
	})
	g.Go(func() error {
		stmts, err := s.ledger.ListStatements(gctx, repository.PaymentsFilter{PaidFrom: &from, PaidTo: &to})
		if err != nil {
			return degrade("statements", err)
		}
		src.statements = stmts
		return nil
	})
	g.Go(func() error {
		fees, err := s.ledger.ListServiceFees(gctx, repository.PaymentsFilter{PaidFrom: &from, PaidTo: &to})
		if err != nil {
			return degrade("service fees", err)
		}
		src.fees = fees
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load report sources: %w", err)
	}
	sort.Strings(src.notices)
	return src, nil
}

// assemble runs the pure pipeline over src, reconciling base. topProvinces
// <= 0 disables folding of the province breakdown.
func (s *ReportService) assemble(typ domain.ReportType, p domain.Period, src *sources, base []domain.Application, topProvinces int) domain.ReportAggregate {
	adjs := reconcile.FilterAdjustments(src.adjustments, p, domain.AdjustmentDisbursement)
	res := reconcile.ReconcileWithDiagnostics(reconcile.DedupeByCode(base), adjs, s.reconcile...)
	src.reconciled = res.Applications
	rec := res.Applications

	provinces := aggregate.GroupByKey(rec, aggregate.ByProvince)
	if topProvinces > 0 {
		provinces = aggregate.TopNWithOverflow(provinces, topProvinces)
	}

	totals := aggregate.SumStatements(src.statements, p)
	feeAmount, feeVAT := aggregate.SumServiceFees(src.fees, p)
	feeAdj := aggregate.SumFeeAdjustments(src.adjustments, p)

	agg := domain.ReportAggregate{
		Type: typ,
		From: p.From.Format(domain.DateLayout),
		To:   p.To.Format(domain.DateLayout),

		ApplicationCount: len(src.created),
		StatusCounts:     aggregate.CountByStatus(src.created),

		ReconciledCount: len(rec),
		DisbursedCount:  aggregate.CountDisbursed(rec),
		DisbursedAmount: aggregate.SumDisbursedAmount(rec),
		AverageTerm:     aggregate.AverageTerm(rec),

		ByProvince:          provinces,
		ByProductType:       aggregate.GroupByKey(rec, aggregate.ByProductType),
		ByLegalDocumentType: aggregate.GroupByKey(rec, aggregate.ByLegalDocumentType),
		BySourceChannel:     aggregate.GroupByKey(rec, aggregate.BySourceChannel),

		Revenue: aggregate.BuildRevenue(totals, feeAmount, feeVAT, feeAdj),

		Partial: len(src.notices) > 0,
	}

	agg.Warnings = append(agg.Warnings, src.notices...)
	agg.Warnings = append(agg.Warnings, diagnosticWarnings(res)...)
	return agg
}

func diagnosticWarnings(res reconcile.Result) []string {
	var out []string
	for _, a := range res.Unmatched {
		out = append(out, fmt.Sprintf("adjustment %s (%s, %.2f) has no matching disbursement in the period", a.ID, a.TargetCode, a.SignedAmount))
	}
	for _, a := range res.OverCancelled {
		out = append(out, fmt.Sprintf("adjustment %s (%s, %.2f) exceeds the remaining balance", a.ID, a.TargetCode, a.SignedAmount))
	}
	return out
}
