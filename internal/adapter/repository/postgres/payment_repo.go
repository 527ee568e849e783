package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// CreateTx inserts a settlement payment inside the given transaction.
// The caller holds the group lock, so the balance check it performed is
// still valid at insert time.
func (r *PaymentRepository) CreateTx(ctx context.Context, tx usecase.Transaction, payment *domain.SettlementPayment) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO settlement_payments (id, group_id, from_participant, to_participant, amount, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := pgxTx.Exec(ctx, query,
		payment.ID,
		payment.GroupID,
		payment.From,
		payment.To,
		decimalToNumeric(payment.Amount),
		payment.Note,
		payment.CreatedBy,
		payment.CreatedAt,
	)

	return err
}

// GetByID retrieves a settlement payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.SettlementPayment, error) {
	query := `
		SELECT id, group_id, from_participant, to_participant, amount, note, created_by, created_at
		FROM settlement_payments
		WHERE id = $1
	`

	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

// Delete deletes a settlement payment.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM settlement_payments WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// ListByGroup lists a group's settlement payments in chronological order.
func (r *PaymentRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.SettlementPayment, error) {
	return r.listByGroup(ctx, r.pool, groupID)
}

// ListByGroupTx lists a group's settlement payments inside the given
// transaction.
func (r *PaymentRepository) ListByGroupTx(ctx context.Context, tx usecase.Transaction, groupID string) ([]*domain.SettlementPayment, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return r.listByGroup(ctx, pgxTx, groupID)
}

func (r *PaymentRepository) listByGroup(ctx context.Context, q querier, groupID string) ([]*domain.SettlementPayment, error) {
	query := `
		SELECT id, group_id, from_participant, to_participant, amount, note, created_by, created_at
		FROM settlement_payments
		WHERE group_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.SettlementPayment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.SettlementPayment, error) {
	var (
		payment domain.SettlementPayment
		amount  pgtype.Numeric
	)

	err := row.Scan(
		&payment.ID,
		&payment.GroupID,
		&payment.From,
		&payment.To,
		&amount,
		&payment.Note,
		&payment.CreatedBy,
		&payment.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	payment.Amount = numericToDecimal(amount)

	return &payment, nil
}
