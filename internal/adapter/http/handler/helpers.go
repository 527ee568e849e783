package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/splitledger/splitledger/internal/adapter/http/dto"
	"github.com/splitledger/splitledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps a domain error onto an HTTP status and writes
// the error response.
func writeDomainError(w http.ResponseWriter, err error, message string) {
	writeError(w, mapDomainError(err), message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrExpenseNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrInviteNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyMember),
		errors.Is(err, domain.ErrMemberHasDebts),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInviteUsed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInviteExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrSenderNotOwing),
		errors.Is(err, domain.ErrRecipientNotOwed),
		errors.Is(err, domain.ErrAmountExceedsOwed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrEmptyParticipants),
		errors.Is(err, domain.ErrSplitMismatch),
		errors.Is(err, domain.ErrUnknownSplitType),
		errors.Is(err, domain.ErrDuplicateParticipant),
		errors.Is(err, domain.ErrSameParticipant),
		errors.Is(err, domain.ErrNotAMember),
		errors.Is(err, domain.ErrInvalidGroupName),
		errors.Is(err, domain.ErrInvalidDescription),
		errors.Is(err, domain.ErrNoteTooLong),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrPasswordTooWeak):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
