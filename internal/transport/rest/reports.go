package rest

import (
	"errors"
	"net/http"
	"strings"

	"loanlook/internal/domain"
	"loanlook/internal/service"
)

func (h *Handler) dailyReport(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, service.ReportRequest{
		Type: domain.ReportDaily,
		Date: strings.TrimSpace(r.URL.Query().Get("date")),
	})
}

func (h *Handler) monthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}
	h.serveReport(w, r, service.ReportRequest{Type: domain.ReportMonthly, Year: year, Month: month})
}

func (h *Handler) yearlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}
	h.serveReport(w, r, service.ReportRequest{Type: domain.ReportYearly, Year: year})
}

func (h *Handler) rangeReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.serveReport(w, r, service.ReportRequest{
		Type: domain.ReportRange,
		From: strings.TrimSpace(q.Get("from")),
		To:   strings.TrimSpace(q.Get("to")),
	})
}

func (h *Handler) serveReport(w http.ResponseWriter, r *http.Request, req service.ReportRequest) {
	agg, err := h.reports.Build(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			ErrorBadRequest(w, err.Error())
			return
		}
		h.log.Error().Err(err).Str("report", string(req.Type)).Msg("build report")
		ErrorInternal(w, "failed to build report")
		return
	}

	message := ""
	if agg.Partial {
		message = "some sources were unavailable; figures are incomplete"
	}
	Success(w, message, agg)
}
