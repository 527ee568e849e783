package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/domain"
)

// UserResponse represents a user in API responses. The password hash
// never leaves the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// ParticipantResponse represents a group member in API responses.
type ParticipantResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
}

// GroupResponse represents a group in API responses.
type GroupResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	CreatedBy    string                `json:"created_by"`
	CreatedAt    time.Time             `json:"created_at"`
	Participants []ParticipantResponse `json:"participants"`
}

// GroupFromDomain converts a domain group to a response.
func GroupFromDomain(g *domain.Group) *GroupResponse {
	participants := make([]ParticipantResponse, len(g.Participants))
	for i, p := range g.Participants {
		participants[i] = ParticipantResponse{
			ID:     p.ID,
			Name:   p.Name,
			Avatar: p.Avatar,
		}
	}

	return &GroupResponse{
		ID:           g.ID,
		Name:         g.Name,
		CreatedBy:    g.CreatedBy,
		CreatedAt:    g.CreatedAt,
		Participants: participants,
	}
}

// GroupsFromDomain converts domain groups to responses.
func GroupsFromDomain(groups []*domain.Group) []*GroupResponse {
	result := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		result[i] = GroupFromDomain(g)
	}
	return result
}

// SplitResponse represents one participant's share of an expense.
type SplitResponse struct {
	ParticipantID string           `json:"participant_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"`
	Shares        *int64           `json:"shares,omitempty"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	SplitType   string          `json:"split_type"`
	Splits      []SplitResponse `json:"splits"`
	Date        time.Time       `json:"date"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	splits := make([]SplitResponse, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = SplitResponse{
			ParticipantID: s.ParticipantID,
			Amount:        s.Amount,
			Percentage:    s.Percentage,
			Shares:        s.Shares,
		}
	}

	return &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		SplitType:   string(e.SplitType),
		Splits:      splits,
		Date:        e.Date,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// PaymentResponse represents a settlement payment in API responses.
type PaymentResponse struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Note      *string         `json:"note,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.SettlementPayment) *PaymentResponse {
	return &PaymentResponse{
		ID:        p.ID,
		GroupID:   p.GroupID,
		From:      p.From,
		To:        p.To,
		Amount:    p.Amount,
		Note:      p.Note,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.SettlementPayment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// TransferResponse represents a debtor-to-creditor edge, used for both
// the aggregate debt matrix and suggested settlement plans.
type TransferResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// DebtsFromDomain converts debt matrix edges to responses.
func DebtsFromDomain(balances []domain.Balance) []TransferResponse {
	result := make([]TransferResponse, len(balances))
	for i, b := range balances {
		result[i] = TransferResponse{From: b.From, To: b.To, Amount: b.Amount}
	}
	return result
}

// SettlementsFromDomain converts suggested settlements to responses.
func SettlementsFromDomain(settlements []domain.Settlement) []TransferResponse {
	result := make([]TransferResponse, len(settlements))
	for i, s := range settlements {
		result[i] = TransferResponse{From: s.From, To: s.To, Amount: s.Amount}
	}
	return result
}

// InviteResponse represents a group invite in API responses.
type InviteResponse struct {
	ID        string     `json:"id"`
	GroupID   string     `json:"group_id"`
	Code      string     `json:"code"`
	URL       string     `json:"url"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	UsedBy    *string    `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// InviteFromDomain converts a domain invite to a response. baseURL is
// the public prefix invite links are served under.
func InviteFromDomain(i *domain.GroupInvite, baseURL string) *InviteResponse {
	return &InviteResponse{
		ID:        i.ID,
		GroupID:   i.GroupID,
		Code:      i.Code,
		URL:       baseURL + "/" + i.Token,
		CreatedBy: i.CreatedBy,
		CreatedAt: i.CreatedAt,
		ExpiresAt: i.ExpiresAt,
		UsedBy:    i.UsedBy,
		UsedAt:    i.UsedAt,
	}
}

// InvitesFromDomain converts domain invites to responses.
func InvitesFromDomain(invites []*domain.GroupInvite, baseURL string) []*InviteResponse {
	result := make([]*InviteResponse, len(invites))
	for i, inv := range invites {
		result[i] = InviteFromDomain(inv, baseURL)
	}
	return result
}

// InvitePreviewResponse is what an invite link resolves to before the
// user decides to join.
type InvitePreviewResponse struct {
	GroupID     string     `json:"group_id"`
	GroupName   string     `json:"group_name"`
	MemberCount int        `json:"member_count"`
	Code        string     `json:"code"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
