package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"loanlook/internal/domain"
	"loanlook/internal/repository"
	"loanlook/internal/service"
	"loanlook/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

type adjustmentResponse struct {
	ID            string  `json:"id"`
	TargetCode    string  `json:"target_code"`
	EffectiveDate string  `json:"effective_date"`
	SignedAmount  float64 `json:"signed_amount"`
	Kind          string  `json:"kind"`

	TermMonths            int     `json:"term_months"`
	CommissionAmount      float64 `json:"commission_amount"`
	Country               string  `json:"country"`
	LegalDocumentTypeCode string  `json:"legal_document_type_code"`
	Province              string  `json:"province"`
	ProductTypeName       string  `json:"product_type_name"`
	SourceChannelName     string  `json:"source_channel_name"`
	CustomerName          string  `json:"customer_name"`

	Note      *string    `json:"note"`
	CreatedBy *int64     `json:"created_by"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func toAdjustmentResponse(a domain.Adjustment) adjustmentResponse {
	return adjustmentResponse{
		ID:                    a.ID,
		TargetCode:            a.TargetCode,
		EffectiveDate:         a.EffectiveDate.Format(domain.DateLayout),
		SignedAmount:          a.SignedAmount,
		Kind:                  string(a.Kind),
		TermMonths:            a.TermMonths,
		CommissionAmount:      a.CommissionAmount,
		Country:               a.Country,
		LegalDocumentTypeCode: a.LegalDocumentTypeCode,
		Province:              a.Province,
		ProductTypeName:       a.ProductTypeName,
		SourceChannelName:     a.SourceChannelName,
		CustomerName:          a.CustomerName,
		Note:                  a.Note,
		CreatedBy:             a.CreatedBy,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

// adjustmentsFilter reads kind, target_code, from and to. The date bounds
// are inclusive days.
func (h *Handler) adjustmentsFilter(r *http.Request) (repository.AdjustmentsFilter, error) {
	var f repository.AdjustmentsFilter

	if kind := queryString(r, "kind"); kind != nil {
		k := domain.AdjustmentKind(*kind)
		if !k.Valid() {
			return f, &ValidationError{Field: "kind", Message: "kind must be disbursement or service_fee"}
		}
		f.Kind = &k
	}
	f.TargetCode = queryString(r, "target_code")

	loc := h.reports.Location()
	from, err := queryDate(r, "from", loc)
	if err != nil {
		return f, err
	}
	to, err := queryDate(r, "to", loc)
	if err != nil {
		return f, err
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	f.EffectiveFrom, f.EffectiveTo = from, to
	return f, nil
}

func (h *Handler) listAdjustments(w http.ResponseWriter, r *http.Request) {
	f, err := h.adjustmentsFilter(r)
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	adjs, err := h.adjustments.List(r.Context(), f)
	if err != nil {
		h.log.Error().Err(err).Msg("list adjustments")
		ErrorInternal(w, "failed to list adjustments")
		return
	}

	out := make([]adjustmentResponse, 0, len(adjs))
	for _, a := range adjs {
		out = append(out, toAdjustmentResponse(a))
	}
	Success(w, "", out)
}

func (h *Handler) getAdjustment(w http.ResponseWriter, r *http.Request) {
	a, err := h.adjustments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.adjustmentError(w, "get", err)
		return
	}
	Success(w, "", toAdjustmentResponse(a))
}

func decodeAdjustment(r *http.Request) (service.AdjustmentInput, error) {
	var in service.AdjustmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return in, &ValidationError{Message: "invalid JSON"}
	}
	return in, nil
}

func (h *Handler) createAdjustment(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	in, err := decodeAdjustment(r)
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	a, err := h.adjustments.Create(r.Context(), in, userID)
	if err != nil {
		h.adjustmentError(w, "create", err)
		return
	}
	SuccessCreated(w, "adjustment created", toAdjustmentResponse(a))
}

func (h *Handler) updateAdjustment(w http.ResponseWriter, r *http.Request) {
	in, err := decodeAdjustment(r)
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	a, err := h.adjustments.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.adjustmentError(w, "update", err)
		return
	}
	Success(w, "adjustment updated", toAdjustmentResponse(a))
}

func (h *Handler) deleteAdjustment(w http.ResponseWriter, r *http.Request) {
	if err := h.adjustments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.adjustmentError(w, "delete", err)
		return
	}
	Success(w, "adjustment deleted", nil)
}

func (h *Handler) adjustmentError(w http.ResponseWriter, op string, err error) {
	var fe service.FieldErrors
	switch {
	case errors.As(err, &fe):
		ErrorValidation(w, fe)
	case errors.Is(err, repository.ErrNotFound):
		ErrorNotFound(w, "adjustment not found")
	default:
		h.log.Error().Err(err).Str("op", op).Msg("adjustment request failed")
		ErrorInternal(w, "failed to "+op+" adjustment")
	}
}
