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

// ExpenseRepository implements usecase.ExpenseRepository. An expense and
// its splits are written together; a split row never exists without its
// expense row.
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// CreateTx inserts an expense and its splits inside the given transaction.
func (r *ExpenseRepository) CreateTx(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO expenses (id, group_id, description, amount, paid_by, split_type, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := pgxTx.Exec(ctx, query,
		expense.ID,
		expense.GroupID,
		expense.Description,
		decimalToNumeric(expense.Amount),
		expense.PaidBy,
		string(expense.SplitType),
		expense.Date,
	)
	if err != nil {
		return err
	}

	return r.insertSplits(ctx, pgxTx, expense)
}

// UpdateTx replaces an expense and its splits inside the given
// transaction.
func (r *ExpenseRepository) UpdateTx(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE expenses
		SET description = $2, amount = $3, paid_by = $4, split_type = $5, date = $6
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query,
		expense.ID,
		expense.Description,
		decimalToNumeric(expense.Amount),
		expense.PaidBy,
		string(expense.SplitType),
		expense.Date,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	deleteQuery := `DELETE FROM expense_splits WHERE expense_id = $1`
	if _, err := pgxTx.Exec(ctx, deleteQuery, expense.ID); err != nil {
		return err
	}

	return r.insertSplits(ctx, pgxTx, expense)
}

// GetByID retrieves an expense with its splits.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := `
		SELECT id, group_id, description, amount, paid_by, split_type, date
		FROM expenses
		WHERE id = $1
	`

	expense, err := scanExpense(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	splits, err := r.loadSplits(ctx, r.pool, []string{id})
	if err != nil {
		return nil, err
	}
	expense.Splits = splits[id]

	return expense, nil
}

// Delete deletes an expense. Its splits go with it via ON DELETE CASCADE.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM expenses WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// ListByGroup lists a group's expenses in chronological order.
func (r *ExpenseRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Expense, error) {
	return r.listByGroup(ctx, r.pool, groupID)
}

// ListByGroupTx lists a group's expenses inside the given transaction.
// Writers use it after locking the group row to get a consistent read.
func (r *ExpenseRepository) ListByGroupTx(ctx context.Context, tx usecase.Transaction, groupID string) ([]*domain.Expense, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return r.listByGroup(ctx, pgxTx, groupID)
}

func (r *ExpenseRepository) listByGroup(ctx context.Context, q querier, groupID string) ([]*domain.Expense, error) {
	query := `
		SELECT id, group_id, description, amount, paid_by, split_type, date
		FROM expenses
		WHERE group_id = $1
		ORDER BY date, id
	`

	rows, err := q.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*domain.Expense
	var ids []string
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
		ids = append(ids, expense.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return expenses, nil
	}

	splits, err := r.loadSplits(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for _, expense := range expenses {
		expense.Splits = splits[expense.ID]
	}

	return expenses, nil
}

func (r *ExpenseRepository) insertSplits(ctx context.Context, q querier, expense *domain.Expense) error {
	query := `
		INSERT INTO expense_splits (expense_id, position, participant_id, amount, percentage, shares)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i, split := range expense.Splits {
		_, err := q.Exec(ctx, query,
			expense.ID,
			i,
			split.ParticipantID,
			decimalToNumeric(split.Amount),
			decimalPtrToNumeric(split.Percentage),
			split.Shares,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// loadSplits loads splits for the given expenses, keyed by expense id,
// in the order they were computed.
func (r *ExpenseRepository) loadSplits(ctx context.Context, q querier, expenseIDs []string) (map[string][]domain.ExpenseSplit, error) {
	query := `
		SELECT expense_id, participant_id, amount, percentage, shares
		FROM expense_splits
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, position
	`

	rows, err := q.Query(ctx, query, expenseIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	splits := make(map[string][]domain.ExpenseSplit)
	for rows.Next() {
		var (
			expenseID  string
			split      domain.ExpenseSplit
			amount     pgtype.Numeric
			percentage pgtype.Numeric
		)
		if err := rows.Scan(&expenseID, &split.ParticipantID, &amount, &percentage, &split.Shares); err != nil {
			return nil, err
		}
		split.Amount = numericToDecimal(amount)
		split.Percentage = numericToDecimalPtr(percentage)
		splits[expenseID] = append(splits[expenseID], split)
	}

	return splits, rows.Err()
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		expense   domain.Expense
		amount    pgtype.Numeric
		splitType string
	)

	err := row.Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.Description,
		&amount,
		&expense.PaidBy,
		&splitType,
		&expense.Date,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}

	expense.Amount = numericToDecimal(amount)
	expense.SplitType = domain.SplitType(splitType)

	return &expense, nil
}
