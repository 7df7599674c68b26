package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"loanlook/internal/domain"
	"loanlook/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AdjustmentStore interface {
	List(ctx context.Context, f repository.AdjustmentsFilter) ([]domain.Adjustment, error)
	Get(ctx context.Context, id string) (domain.Adjustment, error)
	Create(ctx context.Context, a domain.Adjustment) (domain.Adjustment, error)
	Update(ctx context.Context, a domain.Adjustment) (domain.Adjustment, error)
	Delete(ctx context.Context, id string) error
}

// AdjustmentInput is the writable part of an adjustment.
type AdjustmentInput struct {
	TargetCode    string  `json:"target_code" validate:"required,max=64"`
	EffectiveDate string  `json:"effective_date" validate:"required,datetime=2006-01-02"`
	SignedAmount  float64 `json:"signed_amount" validate:"required"`
	Kind          string  `json:"kind" validate:"required,oneof=disbursement service_fee"`

	TermMonths            int     `json:"term_months" validate:"gte=0,lte=600"`
	CommissionAmount      float64 `json:"commission_amount" validate:"gte=0"`
	Country               string  `json:"country" validate:"max=64"`
	LegalDocumentTypeCode string  `json:"legal_document_type_code" validate:"max=32"`
	Province              string  `json:"province" validate:"max=128"`
	ProductTypeName       string  `json:"product_type_name" validate:"max=128"`
	SourceChannelName     string  `json:"source_channel_name" validate:"max=128"`
	CustomerName          string  `json:"customer_name" validate:"max=255"`
	Note                  *string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

type AdjustmentService struct {
	store AdjustmentStore
	loc   *time.Location
	log   zerolog.Logger
}

func NewAdjustmentService(store AdjustmentStore, loc *time.Location, log zerolog.Logger) *AdjustmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &AdjustmentService{
		store: store,
		loc:   loc,
		log:   log.With().Str("component", "adjustments").Logger(),
	}
}

func (s *AdjustmentService) List(ctx context.Context, f repository.AdjustmentsFilter) ([]domain.Adjustment, error) {
	adjs, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	return adjs, nil
}

func (s *AdjustmentService) Get(ctx context.Context, id string) (domain.Adjustment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Adjustment{}, repository.ErrNotFound
	}
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Adjustment{}, fmt.Errorf("get adjustment %s: %w", id, err)
	}
	return a, nil
}

func (s *AdjustmentService) Create(ctx context.Context, in AdjustmentInput, userID int64) (domain.Adjustment, error) {
	a, err := s.fromInput(in)
	if err != nil {
		return domain.Adjustment{}, err
	}
	a.ID = uuid.NewString()
	if userID > 0 {
		a.CreatedBy = &userID
	}

	created, err := s.store.Create(ctx, a)
	if err != nil {
		return domain.Adjustment{}, fmt.Errorf("create adjustment: %w", err)
	}
	s.log.Info().
		Str("id", created.ID).
		Str("target_code", created.TargetCode).
		Float64("amount", created.SignedAmount).
		Int64("user_id", userID).
		Msg("adjustment created")
	return created, nil
}

func (s *AdjustmentService) Update(ctx context.Context, id string, in AdjustmentInput) (domain.Adjustment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Adjustment{}, repository.ErrNotFound
	}
	a, err := s.fromInput(in)
	if err != nil {
		return domain.Adjustment{}, err
	}
	a.ID = id

	updated, err := s.store.Update(ctx, a)
	if err != nil {
		return domain.Adjustment{}, fmt.Errorf("update adjustment %s: %w", id, err)
	}
	s.log.Info().Str("id", id).Msg("adjustment updated")
	return updated, nil
}

func (s *AdjustmentService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete adjustment %s: %w", id, err)
	}
	s.log.Info().Str("id", id).Msg("adjustment deleted")
	return nil
}

func (s *AdjustmentService) fromInput(in AdjustmentInput) (domain.Adjustment, error) {
	in.TargetCode = strings.TrimSpace(in.TargetCode)
	if err := validate.Struct(in); err != nil {
		return domain.Adjustment{}, fieldErrors(err)
	}

	effective, err := time.ParseInLocation(domain.DateLayout, in.EffectiveDate, s.loc)
	if err != nil {
		return domain.Adjustment{}, FieldErrors{"effective_date": "datetime"}
	}

	return domain.Adjustment{
		TargetCode:            in.TargetCode,
		EffectiveDate:         effective,
		SignedAmount:          in.SignedAmount,
		Kind:                  domain.AdjustmentKind(in.Kind),
		TermMonths:            in.TermMonths,
		CommissionAmount:      in.CommissionAmount,
		Country:               in.Country,
		LegalDocumentTypeCode: in.LegalDocumentTypeCode,
		Province:              in.Province,
		ProductTypeName:       in.ProductTypeName,
		SourceChannelName:     in.SourceChannelName,
		CustomerName:          in.CustomerName,
		Note:                  in.Note,
	}, nil
}
