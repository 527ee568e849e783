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

// GroupRepository implements usecase.GroupRepository. Every group read
// loads the participant list in join order, which is what the balance
// engine uses as the deterministic participant order.
type GroupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

// CreateTx inserts a new group inside the given transaction.
func (r *GroupRepository) CreateTx(ctx context.Context, tx usecase.Transaction, group *domain.Group) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO groups (id, name, created_by, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := pgxTx.Exec(ctx, query,
		group.ID,
		group.Name,
		group.CreatedBy,
		group.CreatedAt,
	)

	return err
}

// GetByID retrieves a group with its participants.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	return r.getGroup(ctx, r.pool, id, false)
}

// GetByIDForUpdate retrieves a group with a FOR UPDATE lock on the group
// row. Writers lock the group so that balance reads and inserts in the
// same transaction cannot interleave with another writer.
func (r *GroupRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Group, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return r.getGroup(ctx, pgxTx, id, true)
}

// ListByUser lists the groups a user belongs to, most recent first.
func (r *GroupRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Group, error) {
	query := `
		SELECT g.id, g.name, g.created_by, g.created_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY g.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*domain.Group
	for rows.Next() {
		var group domain.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, group := range groups {
		participants, err := r.loadParticipants(ctx, r.pool, group.ID)
		if err != nil {
			return nil, err
		}
		group.Participants = participants
	}

	return groups, nil
}

// AddMemberTx adds a user to a group inside the given transaction.
func (r *GroupRepository) AddMemberTx(ctx context.Context, tx usecase.Transaction, groupID, userID string) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, $3)
	`

	_, err := pgxTx.Exec(ctx, query, groupID, userID, time.Now().UTC())
	if isUniqueViolation(err) {
		return domain.ErrAlreadyMember
	}

	return err
}

// RemoveMember removes a user from a group.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`

	_, err := r.pool.Exec(ctx, query, groupID, userID)

	return err
}

// Delete deletes a group. Members, expenses, payments and invites go
// with it via ON DELETE CASCADE.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM groups WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id)

	return err
}

func (r *GroupRepository) getGroup(ctx context.Context, q querier, id string, forUpdate bool) (*domain.Group, error) {
	query := `
		SELECT id, name, created_by, created_at
		FROM groups
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var group domain.Group
	err := q.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.CreatedBy,
		&group.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	participants, err := r.loadParticipants(ctx, q, id)
	if err != nil {
		return nil, err
	}
	group.Participants = participants

	return &group, nil
}

func (r *GroupRepository) loadParticipants(ctx context.Context, q querier, groupID string) ([]*domain.Participant, error) {
	query := `
		SELECT u.id, u.name, u.avatar
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at, u.id
	`

	rows, err := q.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Avatar); err != nil {
			return nil, err
		}
		participants = append(participants, &p)
	}

	return participants, rows.Err()
}
