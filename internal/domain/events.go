package domain

import "time"

// Event types published on a group's change stream.
const (
	EventTypeExpenseCreated     = "expense.created"
	EventTypeExpenseUpdated     = "expense.updated"
	EventTypeExpenseDeleted     = "expense.deleted"
	EventTypePaymentCreated     = "payment.created"
	EventTypePaymentDeleted     = "payment.deleted"
	EventTypeParticipantJoined  = "participant.joined"
	EventTypeParticipantRemoved = "participant.removed"
)

// GroupEvent notifies connected clients that something in a group
// changed. Clients re-read the group state; the payload carries ids only.
type GroupEvent struct {
	GroupID    string         `json:"group_id"`
	Type       string         `json:"type"`
	ResourceID string         `json:"resource_id,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}
