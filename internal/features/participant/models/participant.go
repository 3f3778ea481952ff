package models

import (
	"time"
)

// ParticipantStatus is the per-giveaway membership state of a user.
type ParticipantStatus string

const (
	ParticipantStatusJoined      ParticipantStatus = "joined"
	ParticipantStatusWinner      ParticipantStatus = "winner"
	ParticipantStatusNotSelected ParticipantStatus = "not_selected"
)

// Participant is a user's membership record within one giveaway. At most one
// exists per (giveaway, user) pair. Points and InviteCount only increase;
// CompletedTasks only grows.
type Participant struct {
	GiveawayID     string            `json:"giveaway_id"`
	UserID         int64             `json:"user_id"`
	Status         ParticipantStatus `json:"status"`
	Points         int               `json:"points"`
	InviteCode     string            `json:"invite_code"`
	InviteCount    int               `json:"invite_count"`
	CompletedTasks []string          `json:"completed_tasks"`
	JoinedAt       time.Time         `json:"joined_at"`
}

// HasCompleted reports whether the task id is already in CompletedTasks.
func (p *Participant) HasCompleted(taskID string) bool {
	for _, id := range p.CompletedTasks {
		if id == taskID {
			return true
		}
	}
	return false
}

// IsEligible derives eligibility from the required task ids. Eligibility is
// computed, never stored, so there is a single source of truth.
func (p *Participant) IsEligible(requiredTaskIDs []string) bool {
	for _, id := range requiredTaskIDs {
		if !p.HasCompleted(id) {
			return false
		}
	}
	return true
}

// ParticipantResponse is the view returned to the participant themselves.
type ParticipantResponse struct {
	GiveawayID     string            `json:"giveaway_id"`
	UserID         int64             `json:"user_id"`
	Status         ParticipantStatus `json:"status"`
	Points         int               `json:"points"`
	InviteCode     string            `json:"invite_code"`
	InviteCount    int               `json:"invite_count"`
	CompletedTasks []string          `json:"completed_tasks"`
	Eligible       bool              `json:"eligible"`
	JoinedAt       time.Time         `json:"joined_at"`
}

// ParticipantFilter narrows the admin listing.
type ParticipantFilter struct {
	Status ParticipantStatus
	Limit  int
	Offset int
}
