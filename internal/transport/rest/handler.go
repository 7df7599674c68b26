package rest

import (
	"context"
	"net/http"
	"time"

	"loanlook/internal/domain"
	"loanlook/internal/repository"
	"loanlook/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type ReportBuilder interface {
	Build(ctx context.Context, req service.ReportRequest) (domain.ReportAggregate, error)
	Location() *time.Location
}

type AdjustmentManager interface {
	List(ctx context.Context, f repository.AdjustmentsFilter) ([]domain.Adjustment, error)
	Get(ctx context.Context, id string) (domain.Adjustment, error)
	Create(ctx context.Context, in service.AdjustmentInput, userID int64) (domain.Adjustment, error)
	Update(ctx context.Context, id string, in service.AdjustmentInput) (domain.Adjustment, error)
	Delete(ctx context.Context, id string) error
}

type ReportExporter interface {
	StartReportExport(ctx context.Context, req service.ReportRequest, userID int64) (string, error)
}

type ExportListService interface {
	GetExports(ctx context.Context, userID int64) ([]service.ExportView, error)
	GetExport(ctx context.Context, exportID string, userID int64) (service.ExportView, error)
}

type Handler struct {
	reports     ReportBuilder
	adjustments AdjustmentManager
	exporter    ReportExporter
	exportList  ExportListService
	log         zerolog.Logger
}

func NewHandler(reports ReportBuilder, adjustments AdjustmentManager, exporter ReportExporter, exportList ExportListService, log zerolog.Logger) *Handler {
	return &Handler{
		reports:     reports,
		adjustments: adjustments,
		exporter:    exporter,
		exportList:  exportList,
		log:         log.With().Str("component", "http").Logger(),
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(h.log),
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	r.Route("/reports", func(r chi.Router) {
		r.Get("/daily", h.dailyReport)
		r.Get("/monthly", h.monthlyReport)
		r.Get("/yearly", h.yearlyReport)
		r.Get("/range", h.rangeReport)
	})

	r.Route("/adjustments", func(r chi.Router) {
		r.Get("/", h.listAdjustments)
		r.Post("/", h.createAdjustment)
		r.Get("/{id}", h.getAdjustment)
		r.Put("/{id}", h.updateAdjustment)
		r.Delete("/{id}", h.deleteAdjustment)
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/", h.listExports)
		r.Get("/{export_id}", h.getExport)
		r.Post("/report", h.exportReport)
	})

	return r
}

// RequestLogger writes one line per request.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				ev := log.Info()
				if ww.Status() >= http.StatusInternalServerError {
					ev = log.Error()
				}
				ev.Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
