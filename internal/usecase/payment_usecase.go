package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/domain"
)

// PaymentUseCase handles settlement payment business logic.
type PaymentUseCase struct {
	txManager   TransactionManager
	groupRepo   GroupRepository
	expenseRepo ExpenseRepository
	paymentRepo PaymentRepository
	idGen       IDGenerator
	retrier     Retrier
	cache       Cache
	broadcaster EventBroadcaster
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	groupRepo GroupRepository,
	expenseRepo ExpenseRepository,
	paymentRepo PaymentRepository,
	idGen IDGenerator,
	retrier Retrier,
	cache Cache,
	broadcaster EventBroadcaster,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		groupRepo:   groupRepo,
		expenseRepo: expenseRepo,
		paymentRepo: paymentRepo,
		idGen:       idGen,
		retrier:     retrier,
		cache:       cache,
		broadcaster: broadcaster,
	}
}

// CreatePaymentInput represents input for recording a settlement payment.
type CreatePaymentInput struct {
	GroupID string
	From    string
	To      string
	Amount  decimal.Decimal
	Note    *string
	ActorID string
}

// CreatePayment validates a settling payment against the group's current
// net balances and records it. The balance read and the insert happen in
// one transaction with the group row locked, so two concurrent payments
// against the same debt serialize and the loser revalidates. Transient
// serialization failures are retried.
func (uc *PaymentUseCase) CreatePayment(ctx context.Context, input CreatePaymentInput) (*domain.SettlementPayment, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateNote(input.Note); err != nil {
		return nil, err
	}

	var payment *domain.SettlementPayment

	err := uc.retrier.Retry(ctx, func() error {
		created, err := uc.createPaymentOnce(ctx, input)
		if err != nil {
			return err
		}
		payment = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = uc.cache.Delete(ctx, balanceCacheKey(input.GroupID))

	uc.broadcaster.Publish(domain.GroupEvent{
		GroupID:    input.GroupID,
		Type:       domain.EventTypePaymentCreated,
		ResourceID: payment.ID,
		ActorID:    input.ActorID,
		OccurredAt: time.Now().UTC(),
	})

	return payment, nil
}

func (uc *PaymentUseCase) createPaymentOnce(ctx context.Context, input CreatePaymentInput) (*domain.SettlementPayment, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	group, err := uc.groupRepo.GetByIDForUpdate(ctx, tx, input.GroupID)
	if err != nil {
		return nil, err
	}

	if !group.HasParticipant(input.ActorID) {
		return nil, domain.ErrGroupNotFound
	}

	expenses, err := uc.expenseRepo.ListByGroupTx(ctx, tx, input.GroupID)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.ListByGroupTx(ctx, tx, input.GroupID)
	if err != nil {
		return nil, err
	}

	net := domain.ComputeNetBalances(expenses, group.Participants, payments)
	if err := domain.ValidatePayment(input.From, input.To, input.Amount, net); err != nil {
		return nil, err
	}

	payment := &domain.SettlementPayment{
		ID:        uc.idGen.Generate(),
		GroupID:   input.GroupID,
		From:      input.From,
		To:        input.To,
		Amount:    input.Amount,
		Note:      input.Note,
		CreatedBy: input.ActorID,
		CreatedAt: time.Now().UTC(),
	}

	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if err := uc.paymentRepo.CreateTx(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return payment, nil
}

// GetPayment retrieves a payment for a group member.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, paymentID, actorID string) (*domain.SettlementPayment, error) {
	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	group, err := uc.groupRepo.GetByID(ctx, payment.GroupID)
	if err != nil {
		return nil, err
	}

	if !group.HasParticipant(actorID) {
		return nil, domain.ErrPaymentNotFound
	}

	return payment, nil
}

// ListPayments lists a group's payments for a member.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, groupID, actorID string) ([]*domain.SettlementPayment, error) {
	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !group.HasParticipant(actorID) {
		return nil, domain.ErrGroupNotFound
	}

	return uc.paymentRepo.ListByGroup(ctx, groupID)
}

// DeletePayment deletes a recorded payment. Only the member who recorded
// it may delete it.
func (uc *PaymentUseCase) DeletePayment(ctx context.Context, paymentID, actorID string) error {
	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	group, err := uc.groupRepo.GetByID(ctx, payment.GroupID)
	if err != nil {
		return err
	}

	if !group.HasParticipant(actorID) {
		return domain.ErrPaymentNotFound
	}

	if payment.CreatedBy != actorID {
		return domain.ErrUnauthorized
	}

	if err := uc.paymentRepo.Delete(ctx, paymentID); err != nil {
		return err
	}

	_ = uc.cache.Delete(ctx, balanceCacheKey(payment.GroupID))

	uc.broadcaster.Publish(domain.GroupEvent{
		GroupID:    payment.GroupID,
		Type:       domain.EventTypePaymentDeleted,
		ResourceID: paymentID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}
