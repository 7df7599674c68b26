package repository

import (
	"context"
	"database/sql"
	"time"

	"loanlook/internal/domain"
)

// ApplicationsFilter selects applications by creation and/or disbursement
// instant. Lower bounds are inclusive, upper bounds exclusive.
type ApplicationsFilter struct {
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	DisbursedFrom *time.Time
	DisbursedTo   *time.Time
	StatusCode    *domain.ApplicationStatus
}

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (f ApplicationsFilter) where() *whereBuilder {
	w := newWhere()
	w.addTimeRange("a.created_at", f.CreatedFrom, f.CreatedTo)
	w.addTimeRange("a.disbursement_date", f.DisbursedFrom, f.DisbursedTo)
	if f.StatusCode != nil {
		w.add("a.status_code = $%d", int(*f.StatusCode))
	}
	return w
}

func (r *ApplicationRepository) List(ctx context.Context, f ApplicationsFilter) ([]domain.Application, error) {
	baseQuery := `
		SELECT
			a.id,
			a.code,
			COALESCE(a.customer_name, ''),
			COALESCE(a.loan_term_months, 0),
			COALESCE(a.approved_term_months, 0),
			COALESCE(a.disbursed_amount, 0),
			COALESCE(a.commission_amount, 0),
			a.status_code,
			COALESCE(pt.name, ''),
			COALESCE(a.province, ''),
			COALESCE(a.country, ''),
			COALESCE(a.legal_document_type_code, ''),
			COALESCE(sc.name, ''),
			a.created_at,
			a.disbursement_date
		FROM applications a
		LEFT JOIN product_types   pt ON pt.id = a.product_type_id
		LEFT JOIN source_channels sc ON sc.id = a.source_channel_id
	`

	w := f.where()
	query := baseQuery + w.String() + " ORDER BY a.created_at, a.id"

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Application
	for rows.Next() {
		var (
			a         domain.Application
			status    int
			disbursed sql.NullTime
		)
		if err := rows.Scan(
			&a.ID,
			&a.Code,
			&a.CustomerName,
			&a.LoanTermMonths,
			&a.ApprovedTermMonths,
			&a.DisbursedAmount,
			&a.CommissionAmount,
			&status,
			&a.ProductTypeName,
			&a.Province,
			&a.Country,
			&a.LegalDocumentTypeCode,
			&a.SourceChannelName,
			&a.CreatedAt,
			&disbursed,
		); err != nil {
			return nil, err
		}

		a.StatusCode = domain.ApplicationStatus(status)
		if disbursed.Valid {
			t := disbursed.Time
			a.DisbursementDate = &t
		}

		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
