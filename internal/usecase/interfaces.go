package usecase

import (
	"context"
	"time"

	"github.com/splitledger/splitledger/internal/domain"
)

// GroupRepository defines data access for groups and their memberships.
// Group reads always load the participant list.
type GroupRepository interface {
	CreateTx(ctx context.Context, tx Transaction, group *domain.Group) error
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Group, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Group, error)
	AddMemberTx(ctx context.Context, tx Transaction, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	Delete(ctx context.Context, id string) error
}

// ExpenseRepository defines data access for expenses. Create and Update
// persist the expense together with its splits.
type ExpenseRepository interface {
	CreateTx(ctx context.Context, tx Transaction, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	UpdateTx(ctx context.Context, tx Transaction, expense *domain.Expense) error
	Delete(ctx context.Context, id string) error
	ListByGroup(ctx context.Context, groupID string) ([]*domain.Expense, error)
	ListByGroupTx(ctx context.Context, tx Transaction, groupID string) ([]*domain.Expense, error)
}

// PaymentRepository defines data access for settlement payments.
type PaymentRepository interface {
	CreateTx(ctx context.Context, tx Transaction, payment *domain.SettlementPayment) error
	GetByID(ctx context.Context, id string) (*domain.SettlementPayment, error)
	Delete(ctx context.Context, id string) error
	ListByGroup(ctx context.Context, groupID string) ([]*domain.SettlementPayment, error)
	ListByGroupTx(ctx context.Context, tx Transaction, groupID string) ([]*domain.SettlementPayment, error)
}

// InviteRepository defines data access for group invites.
type InviteRepository interface {
	Create(ctx context.Context, invite *domain.GroupInvite) error
	GetByToken(ctx context.Context, token string) (*domain.GroupInvite, error)
	GetByCode(ctx context.Context, code string) (*domain.GroupInvite, error)
	MarkUsedTx(ctx context.Context, tx Transaction, id, userID string, usedAt time.Time) error
	ListByGroup(ctx context.Context, groupID string) ([]*domain.GroupInvite, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient storage failures such as
// serialization conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// EventBroadcaster fans a group change event out to connected listeners.
// Publishing is fire-and-forget; slow listeners never block a write.
type EventBroadcaster interface {
	Publish(event domain.GroupEvent)
}
