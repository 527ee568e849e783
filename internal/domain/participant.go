package domain

import "time"

// Participant is a member of a group as seen by the balance engine.
// Participants are created when a user joins a group and are immutable
// afterwards.
type Participant struct {
	ID     string
	Name   string
	Avatar *string
}

// Group is a shared-expense group.
type Group struct {
	ID           string
	Name         string
	Participants []*Participant
	CreatedBy    string
	CreatedAt    time.Time
}

// HasParticipant reports whether the given user is a member of the group.
func (g *Group) HasParticipant(id string) bool {
	for _, p := range g.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

// ParticipantIDs returns member ids in the group's participant order.
func (g *Group) ParticipantIDs() []string {
	ids := make([]string, len(g.Participants))
	for i, p := range g.Participants {
		ids[i] = p.ID
	}
	return ids
}
