package domain

import "errors"

var (
	// Split calculator errors
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrEmptyParticipants    = errors.New("at least one participant is required")
	ErrSplitMismatch        = errors.New("splits do not add up to the expense amount")
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrDuplicateParticipant = errors.New("participant appears more than once in split")

	// Payment guard errors
	ErrSameParticipant   = errors.New("payer and recipient must be different participants")
	ErrNotAMember        = errors.New("participant is not a member of the group")
	ErrSenderNotOwing    = errors.New("sender does not currently owe money")
	ErrRecipientNotOwed  = errors.New("recipient is not currently owed money")
	ErrAmountExceedsOwed = errors.New("amount exceeds the outstanding debt")

	// Entity errors
	ErrGroupNotFound   = errors.New("group not found")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInviteNotFound  = errors.New("invite not found")
	ErrInviteExpired   = errors.New("invite has expired")
	ErrInviteUsed      = errors.New("invite has already been used")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email is already registered")
	ErrAlreadyMember   = errors.New("user is already a member of the group")
	ErrMemberHasDebts  = errors.New("member still has an unsettled balance")
)
