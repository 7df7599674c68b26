package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"loanlook/internal/service"
	"loanlook/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	var req service.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	exportID, err := h.exporter.StartReportExport(r.Context(), req, userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			ErrorBadRequest(w, err.Error())
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("start report export")
		ErrorInternal(w, "failed to start export")
		return
	}

	SuccessAccepted(w, "export queued", map[string]any{"export_id": exportID})
}

func (h *Handler) listExports(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exports, err := h.exportList.GetExports(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("list exports")
		ErrorInternal(w, "failed to get exports")
		return
	}

	Success(w, "", exports)
}

func (h *Handler) getExport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exportIDParam := chi.URLParam(r, "export_id")
	if exportIDParam == "" {
		ErrorBadRequest(w, "export_id is required")
		return
	}
	exportID := "exports:" + exportIDParam

	export, err := h.exportList.GetExport(r.Context(), exportID, userID)
	if err != nil {
		if !errors.Is(err, service.ErrExportNotFound) {
			h.log.Error().Err(err).Str("export_id", exportID).Msg("get export")
		}
		ErrorNotFound(w, "export not found")
		return
	}

	Success(w, "", export)
}
