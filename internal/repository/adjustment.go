package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"loanlook/internal/domain"
)

type AdjustmentsFilter struct {
	Kind          *domain.AdjustmentKind
	TargetCode    *string
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
}

type AdjustmentRepository struct {
	db *sql.DB
}

func NewAdjustmentRepository(db *sql.DB) *AdjustmentRepository {
	return &AdjustmentRepository{db: db}
}

const adjustmentColumns = `
	id,
	target_code,
	effective_date,
	signed_amount,
	kind,
	COALESCE(term_months, 0),
	COALESCE(commission_amount, 0),
	COALESCE(country, ''),
	COALESCE(legal_document_type_code, ''),
	COALESCE(province, ''),
	COALESCE(product_type_name, ''),
	COALESCE(source_channel_name, ''),
	COALESCE(customer_name, ''),
	note,
	created_by,
	created_at,
	updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdjustment(row rowScanner) (domain.Adjustment, error) {
	var (
		a         domain.Adjustment
		kind      string
		note      sql.NullString
		createdBy sql.NullInt64
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	if err := row.Scan(
		&a.ID,
		&a.TargetCode,
		&a.EffectiveDate,
		&a.SignedAmount,
		&kind,
		&a.TermMonths,
		&a.CommissionAmount,
		&a.Country,
		&a.LegalDocumentTypeCode,
		&a.Province,
		&a.ProductTypeName,
		&a.SourceChannelName,
		&a.CustomerName,
		&note,
		&createdBy,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Adjustment{}, err
	}

	a.Kind = domain.AdjustmentKind(kind)
	if note.Valid {
		a.Note = &note.String
	}
	if createdBy.Valid {
		a.CreatedBy = &createdBy.Int64
	}
	if createdAt.Valid {
		a.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		a.UpdatedAt = &updatedAt.Time
	}
	return a, nil
}

// List returns adjustments in entry order (created_at, then id). That order
// is the order in which they are applied during reconciliation.
func (r *AdjustmentRepository) List(ctx context.Context, f AdjustmentsFilter) ([]domain.Adjustment, error) {
	w := newWhere()
	if f.Kind != nil {
		w.add("kind = $%d", string(*f.Kind))
	}
	if f.TargetCode != nil && *f.TargetCode != "" {
		w.add("target_code = $%d", *f.TargetCode)
	}
	w.addTimeRange("effective_date", f.EffectiveFrom, f.EffectiveTo)

	query := "SELECT " + adjustmentColumns + " FROM adjustments" + w.String() + " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Adjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AdjustmentRepository) Get(ctx context.Context, id string) (domain.Adjustment, error) {
	query := "SELECT " + adjustmentColumns + " FROM adjustments WHERE id = $1"

	a, err := scanAdjustment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Adjustment{}, ErrNotFound
	}
	return a, err
}

func adjustmentArgs(a domain.Adjustment) []any {
	return []any{
		a.TargetCode,
		a.EffectiveDate,
		a.SignedAmount,
		string(a.Kind),
		a.TermMonths,
		a.CommissionAmount,
		a.Country,
		a.LegalDocumentTypeCode,
		a.Province,
		a.ProductTypeName,
		a.SourceChannelName,
		a.CustomerName,
		a.Note,
	}
}

func (r *AdjustmentRepository) Create(ctx context.Context, a domain.Adjustment) (domain.Adjustment, error) {
	query := `
		INSERT INTO adjustments (
			target_code, effective_date, signed_amount, kind,
			term_months, commission_amount, country, legal_document_type_code,
			province, product_type_name, source_channel_name, customer_name,
			note, id, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
		RETURNING ` + adjustmentColumns

	now := time.Now()
	args := append(adjustmentArgs(a), a.ID, a.CreatedBy, now)

	return scanAdjustment(r.db.QueryRowContext(ctx, query, args...))
}

func (r *AdjustmentRepository) Update(ctx context.Context, a domain.Adjustment) (domain.Adjustment, error) {
	query := `
		UPDATE adjustments SET
			target_code = $1, effective_date = $2, signed_amount = $3, kind = $4,
			term_months = $5, commission_amount = $6, country = $7, legal_document_type_code = $8,
			province = $9, product_type_name = $10, source_channel_name = $11, customer_name = $12,
			note = $13, updated_at = $15
		WHERE id = $14
		RETURNING ` + adjustmentColumns

	args := append(adjustmentArgs(a), a.ID, time.Now())

	updated, err := scanAdjustment(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Adjustment{}, ErrNotFound
	}
	return updated, err
}

func (r *AdjustmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM adjustments WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
