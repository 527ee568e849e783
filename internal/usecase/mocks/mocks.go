package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/usecase"
)

// MockGroupRepository is a mock implementation of GroupRepository.
type MockGroupRepository struct {
	mu     sync.RWMutex
	groups map[string]*domain.Group

	CreateTxFunc         func(ctx context.Context, tx usecase.Transaction, group *domain.Group) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Group, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Group, error)
	ListByUserFunc       func(ctx context.Context, userID string) ([]*domain.Group, error)
	AddMemberTxFunc      func(ctx context.Context, tx usecase.Transaction, groupID, userID string) error
	RemoveMemberFunc     func(ctx context.Context, groupID, userID string) error
	DeleteFunc           func(ctx context.Context, id string) error
}

func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		groups: make(map[string]*domain.Group),
	}
}

// Seed stores a group directly, bypassing the transactional path.
func (m *MockGroupRepository) Seed(group *domain.Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[group.ID] = group
}

func (m *MockGroupRepository) CreateTx(ctx context.Context, tx usecase.Transaction, group *domain.Group) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, group)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[group.ID] = group
	return nil
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, domain.ErrGroupNotFound
}

func (m *MockGroupRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Group, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockGroupRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Group, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var groups []*domain.Group
	for _, g := range m.groups {
		if g.HasParticipant(userID) {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

func (m *MockGroupRepository) AddMemberTx(ctx context.Context, tx usecase.Transaction, groupID, userID string) error {
	if m.AddMemberTxFunc != nil {
		return m.AddMemberTxFunc(ctx, tx, groupID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	g.Participants = append(g.Participants, &domain.Participant{ID: userID, Name: userID})
	return nil
}

func (m *MockGroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	if m.RemoveMemberFunc != nil {
		return m.RemoveMemberFunc(ctx, groupID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	kept := g.Participants[:0]
	for _, p := range g.Participants {
		if p.ID != userID {
			kept = append(kept, p)
		}
	}
	g.Participants = kept
	return nil
}

func (m *MockGroupRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, id)
	return nil
}

// MockExpenseRepository is a mock implementation of ExpenseRepository.
type MockExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[string]*domain.Expense

	CreateTxFunc      func(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Expense, error)
	UpdateTxFunc      func(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error
	DeleteFunc        func(ctx context.Context, id string) error
	ListByGroupFunc   func(ctx context.Context, groupID string) ([]*domain.Expense, error)
	ListByGroupTxFunc func(ctx context.Context, tx usecase.Transaction, groupID string) ([]*domain.Expense, error)
}

func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		expenses: make(map[string]*domain.Expense),
	}
}

func (m *MockExpenseRepository) Seed(expense *domain.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[expense.ID] = expense
}

func (m *MockExpenseRepository) CreateTx(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, expense)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[expense.ID] = expense
	return nil
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.expenses[id]; ok {
		return e, nil
	}
	return nil, domain.ErrExpenseNotFound
}

func (m *MockExpenseRepository) UpdateTx(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	if m.UpdateTxFunc != nil {
		return m.UpdateTxFunc(ctx, tx, expense)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[expense.ID]; !ok {
		return domain.ErrExpenseNotFound
	}
	m.expenses[expense.ID] = expense
	return nil
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expenses, id)
	return nil
}

func (m *MockExpenseRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Expense, error) {
	if m.ListByGroupFunc != nil {
		return m.ListByGroupFunc(ctx, groupID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var expenses []*domain.Expense
	for _, e := range m.expenses {
		if e.GroupID == groupID {
			expenses = append(expenses, e)
		}
	}
	return expenses, nil
}

func (m *MockExpenseRepository) ListByGroupTx(ctx context.Context, tx usecase.Transaction, groupID string) ([]*domain.Expense, error) {
	if m.ListByGroupTxFunc != nil {
		return m.ListByGroupTxFunc(ctx, tx, groupID)
	}
	return m.ListByGroup(ctx, groupID)
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.SettlementPayment

	CreateTxFunc      func(ctx context.Context, tx usecase.Transaction, payment *domain.SettlementPayment) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.SettlementPayment, error)
	DeleteFunc        func(ctx context.Context, id string) error
	ListByGroupFunc   func(ctx context.Context, groupID string) ([]*domain.SettlementPayment, error)
	ListByGroupTxFunc func(ctx context.Context, tx usecase.Transaction, groupID string) ([]*domain.SettlementPayment, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.SettlementPayment),
	}
}

func (m *MockPaymentRepository) Seed(payment *domain.SettlementPayment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

func (m *MockPaymentRepository) CreateTx(ctx context.Context, tx usecase.Transaction, payment *domain.SettlementPayment) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.SettlementPayment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.payments, id)
	return nil
}

func (m *MockPaymentRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.SettlementPayment, error) {
	if m.ListByGroupFunc != nil {
		return m.ListByGroupFunc(ctx, groupID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var payments []*domain.SettlementPayment
	for _, p := range m.payments {
		if p.GroupID == groupID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func (m *MockPaymentRepository) ListByGroupTx(ctx context.Context, tx usecase.Transaction, groupID string) ([]*domain.SettlementPayment, error) {
	if m.ListByGroupTxFunc != nil {
		return m.ListByGroupTxFunc(ctx, tx, groupID)
	}
	return m.ListByGroup(ctx, groupID)
}

// MockInviteRepository is a mock implementation of InviteRepository.
type MockInviteRepository struct {
	mu      sync.RWMutex
	invites map[string]*domain.GroupInvite

	CreateFunc      func(ctx context.Context, invite *domain.GroupInvite) error
	GetByTokenFunc  func(ctx context.Context, token string) (*domain.GroupInvite, error)
	GetByCodeFunc   func(ctx context.Context, code string) (*domain.GroupInvite, error)
	MarkUsedTxFunc  func(ctx context.Context, tx usecase.Transaction, id, userID string, usedAt time.Time) error
	ListByGroupFunc func(ctx context.Context, groupID string) ([]*domain.GroupInvite, error)
	CodeExistsFunc  func(ctx context.Context, code string) (bool, error)
}

func NewMockInviteRepository() *MockInviteRepository {
	return &MockInviteRepository{
		invites: make(map[string]*domain.GroupInvite),
	}
}

func (m *MockInviteRepository) Seed(invite *domain.GroupInvite) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invites[invite.ID] = invite
}

func (m *MockInviteRepository) Create(ctx context.Context, invite *domain.GroupInvite) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, invite)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invites[invite.ID] = invite
	return nil
}

func (m *MockInviteRepository) GetByToken(ctx context.Context, token string) (*domain.GroupInvite, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, i := range m.invites {
		if i.Token == token {
			return i, nil
		}
	}
	return nil, domain.ErrInviteNotFound
}

func (m *MockInviteRepository) GetByCode(ctx context.Context, code string) (*domain.GroupInvite, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, i := range m.invites {
		if i.Code == code {
			return i, nil
		}
	}
	return nil, domain.ErrInviteNotFound
}

func (m *MockInviteRepository) MarkUsedTx(ctx context.Context, tx usecase.Transaction, id, userID string, usedAt time.Time) error {
	if m.MarkUsedTxFunc != nil {
		return m.MarkUsedTxFunc(ctx, tx, id, userID, usedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.invites[id]
	if !ok {
		return domain.ErrInviteNotFound
	}
	i.UsedBy = &userID
	i.UsedAt = &usedAt
	return nil
}

func (m *MockInviteRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.GroupInvite, error) {
	if m.ListByGroupFunc != nil {
		return m.ListByGroupFunc(ctx, groupID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var invites []*domain.GroupInvite
	for _, i := range m.invites {
		if i.GroupID == groupID {
			invites = append(invites, i)
		}
	}
	return invites, nil
}

func (m *MockInviteRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	if m.CodeExistsFunc != nil {
		return m.CodeExistsFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, i := range m.invites {
		if i.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	UpdateFunc     func(ctx context.Context, user *domain.User) error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Seed(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Store a copy: the use case blanks the password hash on the value it
	// hands back to callers.
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockRetrier is a mock implementation of Retrier that runs the
// operation once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockEventBroadcaster records published events.
type MockEventBroadcaster struct {
	mu     sync.Mutex
	events []domain.GroupEvent

	PublishFunc func(event domain.GroupEvent)
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Publish(event domain.GroupEvent) {
	if m.PublishFunc != nil {
		m.PublishFunc(event)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns a copy of everything published so far.
func (m *MockEventBroadcaster) Events() []domain.GroupEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GroupEvent(nil), m.events...)
}
