package domain

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"
)

// Invite code alphabet avoids easily confused characters (no 0/O, 1/I).
const (
	inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteCodeLength   = 6
	inviteTokenBytes   = 24
)

// DefaultInviteTTL is how long an invite stays redeemable unless the
// creator asks otherwise.
const DefaultInviteTTL = 72 * time.Hour

// GroupInvite lets a user join a group either via a shareable link token
// or a short human-readable code. Single use.
type GroupInvite struct {
	ID        string
	GroupID   string
	Token     string
	Code      string
	CreatedBy string
	CreatedAt time.Time
	ExpiresAt *time.Time
	UsedBy    *string
	UsedAt    *time.Time
}

// IsExpired reports whether the invite has passed its expiry.
func (i *GroupInvite) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// IsUsed reports whether the invite has already been redeemed.
func (i *GroupInvite) IsUsed() bool {
	return i.UsedAt != nil
}

// NewInviteToken generates the long random token used in invite links.
func NewInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewInviteCode generates a short code candidate. Uniqueness is enforced
// by the caller against storage.
func NewInviteCode() (string, error) {
	code := make([]byte, inviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
