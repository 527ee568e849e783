package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/usecase"
)

// InviteRepository implements usecase.InviteRepository.
type InviteRepository struct {
	pool *pgxpool.Pool
}

// NewInviteRepository creates a new InviteRepository.
func NewInviteRepository(pool *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{pool: pool}
}

// Create inserts a new invite.
func (r *InviteRepository) Create(ctx context.Context, invite *domain.GroupInvite) error {
	query := `
		INSERT INTO group_invites (id, group_id, token, code, created_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		invite.ID,
		invite.GroupID,
		invite.Token,
		invite.Code,
		invite.CreatedBy,
		invite.CreatedAt,
		invite.ExpiresAt,
	)

	return err
}

// GetByToken retrieves an invite by its link token.
func (r *InviteRepository) GetByToken(ctx context.Context, token string) (*domain.GroupInvite, error) {
	return r.getBy(ctx, "token", token)
}

// GetByCode retrieves an invite by its short code.
func (r *InviteRepository) GetByCode(ctx context.Context, code string) (*domain.GroupInvite, error) {
	return r.getBy(ctx, "code", code)
}

// MarkUsedTx marks an invite as redeemed inside the given transaction.
// Redeeming twice is a conflict: the second writer sees zero rows.
func (r *InviteRepository) MarkUsedTx(ctx context.Context, tx usecase.Transaction, id, userID string, usedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE group_invites
		SET used_by = $2, used_at = $3
		WHERE id = $1 AND used_at IS NULL
	`

	tag, err := pgxTx.Exec(ctx, query, id, userID, usedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInviteUsed
	}

	return nil
}

// ListByGroup lists a group's invites, newest first.
func (r *InviteRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.GroupInvite, error) {
	query := `
		SELECT id, group_id, token, code, created_by, created_at, expires_at, used_by, used_at
		FROM group_invites
		WHERE group_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*domain.GroupInvite
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}

	return invites, rows.Err()
}

// CodeExists reports whether any invite already carries the given code.
func (r *InviteRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM group_invites WHERE code = $1)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, code).Scan(&exists)

	return exists, err
}

func (r *InviteRepository) getBy(ctx context.Context, column, value string) (*domain.GroupInvite, error) {
	query := `
		SELECT id, group_id, token, code, created_by, created_at, expires_at, used_by, used_at
		FROM group_invites
		WHERE ` + column + ` = $1
	`

	return scanInvite(r.pool.QueryRow(ctx, query, value))
}

func scanInvite(row pgx.Row) (*domain.GroupInvite, error) {
	var invite domain.GroupInvite

	err := row.Scan(
		&invite.ID,
		&invite.GroupID,
		&invite.Token,
		&invite.Code,
		&invite.CreatedBy,
		&invite.CreatedAt,
		&invite.ExpiresAt,
		&invite.UsedBy,
		&invite.UsedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}

	return &invite, nil
}
