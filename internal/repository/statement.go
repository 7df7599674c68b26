package repository

import (
	"context"
	"database/sql"
	"time"

	"loanlook/internal/domain"
)

// PaymentsFilter bounds statements and service fees by payment instant,
// lower bound inclusive, upper bound exclusive.
type PaymentsFilter struct {
	PaidFrom *time.Time
	PaidTo   *time.Time
}

type StatementRepository struct {
	db *sql.DB
}

func NewStatementRepository(db *sql.DB) *StatementRepository {
	return &StatementRepository{db: db}
}

func (r *StatementRepository) ListStatements(ctx context.Context, f PaymentsFilter) ([]domain.Statement, error) {
	base := `SELECT s.id, s.application_code, s.payment_date, s.principal, s.interest, s.management_fee, s.overdue_fee, s.settlement_fee, s.interest_vat, s.management_fee_vat, s.overdue_fee_vat, s.settlement_fee_vat FROM statements s`

	w := newWhere()
	w.addTimeRange("s.payment_date", f.PaidFrom, f.PaidTo)

	rows, err := r.db.QueryContext(ctx, base+w.String(), w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Statement
	for rows.Next() {
		var s domain.Statement
		var paymentDate sql.NullTime
		if err := rows.Scan(
			&s.ID,
			&s.ApplicationCode,
			&paymentDate,
			&s.Principal,
			&s.Interest,
			&s.ManagementFee,
			&s.OverdueFee,
			&s.SettlementFee,
			&s.InterestVAT,
			&s.ManagementFeeVAT,
			&s.OverdueFeeVAT,
			&s.SettlementFeeVAT,
		); err != nil {
			return nil, err
		}
		if paymentDate.Valid {
			s.PaymentDate = &paymentDate.Time
		}
		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StatementRepository) ListServiceFees(ctx context.Context, f PaymentsFilter) ([]domain.ServiceFee, error) {
	base := `SELECT f.id, f.application_code, f.payment_date, f.amount, f.vat FROM service_fees f`

	w := newWhere()
	w.addTimeRange("f.payment_date", f.PaidFrom, f.PaidTo)

	rows, err := r.db.QueryContext(ctx, base+w.String(), w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ServiceFee
	for rows.Next() {
		var fee domain.ServiceFee
		var paymentDate sql.NullTime
		if err := rows.Scan(&fee.ID, &fee.ApplicationCode, &paymentDate, &fee.Amount, &fee.VAT); err != nil {
			return nil, err
		}
		if paymentDate.Valid {
			fee.PaymentDate = &paymentDate.Time
		}
		out = append(out, fee)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
