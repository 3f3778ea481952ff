package models

import (
	"time"
)

// GiveawayStatus represents the lifecycle state of a giveaway. The status
// only ever advances forward.
type GiveawayStatus string

const (
	GiveawayStatusDraft          GiveawayStatus = "draft"
	GiveawayStatusUpcoming       GiveawayStatus = "upcoming"
	GiveawayStatusActive         GiveawayStatus = "active"
	GiveawayStatusEnded          GiveawayStatus = "ended"
	GiveawayStatusWinnerSelected GiveawayStatus = "winner_selected"
)

// statusRank orders the lifecycle; transitions may only increase the rank.
var statusRank = map[GiveawayStatus]int{
	GiveawayStatusDraft:          0,
	GiveawayStatusUpcoming:       1,
	GiveawayStatusActive:         2,
	GiveawayStatusEnded:          3,
	GiveawayStatusWinnerSelected: 4,
}

// IsValid reports whether the status is one of the known lifecycle states.
func (s GiveawayStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next respects the
// forward-only lifecycle. Staying on the same status is a permitted no-op.
func (s GiveawayStatus) CanTransitionTo(next GiveawayStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// SelectionMode says how the winner was (or will be) chosen.
type SelectionMode string

const (
	SelectionModeSystemRandom SelectionMode = "SYSTEM_RANDOM"
	SelectionModeAdminRandom  SelectionMode = "ADMIN_RANDOM"
)

// Giveaway represents a time-boxed promotional event with a single eventual
// winner. WinnerID transitions from nil to a fixed value exactly once.
type Giveaway struct {
	ID                  string         `json:"id"`
	Slug                string         `json:"slug"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	PrizeName           string         `json:"prize_name"`
	PrizeValue          string         `json:"prize_value,omitempty"`
	Status              GiveawayStatus `json:"status"`
	StartDate           time.Time      `json:"start_date"`
	EndDate             time.Time      `json:"end_date"`
	WinnerID            *int64         `json:"winner_id,omitempty"`
	WinnerSelectionMode SelectionMode  `json:"winner_selection_mode,omitempty"`
	CreatorID           int64          `json:"creator_id"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// HasStarted reports whether the start date has passed.
func (g *Giveaway) HasStarted(now time.Time) bool {
	return !now.Before(g.StartDate)
}

// HasEnded reports whether the end date has passed.
func (g *Giveaway) HasEnded(now time.Time) bool {
	return !now.Before(g.EndDate)
}

// DueStatus returns the lifecycle state the giveaway should be in at the
// given instant, considering only time-driven transitions. Terminal and
// draft states are never advanced by time.
func (g *Giveaway) DueStatus(now time.Time) GiveawayStatus {
	switch g.Status {
	case GiveawayStatusUpcoming:
		if g.HasEnded(now) {
			return GiveawayStatusEnded
		}
		if g.HasStarted(now) {
			return GiveawayStatusActive
		}
	case GiveawayStatusActive:
		if g.HasEnded(now) {
			return GiveawayStatusEnded
		}
	}
	return g.Status
}

// GiveawayCreate represents data for creating a new giveaway.
type GiveawayCreate struct {
	Slug        string    `json:"slug" binding:"required"`
	Title       string    `json:"title" binding:"required,min=3,max=200"`
	Description string    `json:"description" binding:"max=1000"`
	PrizeName   string    `json:"prize_name" binding:"required,max=200"`
	PrizeValue  string    `json:"prize_value" binding:"max=200"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

// GiveawayUpdate is a partial update; nil fields are left untouched.
type GiveawayUpdate struct {
	Title       *string         `json:"title,omitempty" binding:"omitempty,min=3,max=200"`
	Description *string         `json:"description,omitempty" binding:"omitempty,max=1000"`
	PrizeName   *string         `json:"prize_name,omitempty" binding:"omitempty,max=200"`
	PrizeValue  *string         `json:"prize_value,omitempty" binding:"omitempty,max=200"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Status      *GiveawayStatus `json:"status,omitempty"`
}

// ListFilter narrows List results.
type ListFilter struct {
	Status GiveawayStatus
	Limit  int
	Offset int
}

// GiveawayResponse is the public view of a giveaway.
type GiveawayResponse struct {
	ID                  string         `json:"id"`
	Slug                string         `json:"slug"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	PrizeName           string         `json:"prize_name"`
	PrizeValue          string         `json:"prize_value,omitempty"`
	Status              GiveawayStatus `json:"status"`
	StartDate           time.Time      `json:"start_date"`
	EndDate             time.Time      `json:"end_date"`
	WinnerID            *int64         `json:"winner_id,omitempty"`
	WinnerSelectionMode SelectionMode  `json:"winner_selection_mode,omitempty"`
	ParticipantsCount   int64          `json:"participants_count"`
	CreatedAt           time.Time      `json:"created_at"`
}

// SelectWinnerInput carries the operator's winner-selection request.
type SelectWinnerInput struct {
	Mode         SelectionMode `json:"mode" binding:"required"`
	WinnerUserID *int64        `json:"winner_user_id,omitempty"`
}

// SelectWinnerResult is returned once the winner commit succeeds.
type SelectWinnerResult struct {
	GiveawayID string        `json:"giveaway_id"`
	WinnerID   int64         `json:"winner_id"`
	Mode       SelectionMode `json:"mode"`
	PoolSize   int           `json:"pool_size"`
}
