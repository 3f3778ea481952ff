package repository

import (
	"context"
	"errors"

	"giveaway-engine-backend/internal/features/participant/models"
)

var (
	ErrAlreadyJoined       = errors.New("user already joined this giveaway")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrInviteCodeTaken     = errors.New("invite code already registered")
	ErrInviteCodeNotFound  = errors.New("invite code not found")

	ErrTaskAlreadyCompleted  = errors.New("task already completed")
	ErrInviteCapReached      = errors.New("invite cap reached")
	ErrInviteAlreadyCredited = errors.New("invitee already credited to this referrer")

	// ErrConcurrentUpdate is returned when a conditional write lost against a
	// concurrent mutation of the same participant.
	ErrConcurrentUpdate = errors.New("participant changed concurrently")
)

// InviteCodeRef resolves an invite code to its owning participant.
type InviteCodeRef struct {
	GiveawayID string `json:"giveaway_id"`
	UserID     int64  `json:"user_id"`
}

// ParticipantRepository owns participant records. Join, task completion and
// invite crediting are single atomic check-then-act units against the store;
// participant state is the contended resource of the whole engine.
type ParticipantRepository interface {
	// Create inserts the participant and registers its invite code. A second
	// insert for the same (giveaway, user) pair fails with ErrAlreadyJoined
	// and leaves no second record.
	Create(ctx context.Context, participant *models.Participant) error

	Get(ctx context.Context, giveawayID string, userID int64) (*models.Participant, error)
	List(ctx context.Context, giveawayID string, filter models.ParticipantFilter) ([]*models.Participant, int, error)
	Count(ctx context.Context, giveawayID string) (int64, error)

	ResolveInviteCode(ctx context.Context, code string) (*InviteCodeRef, error)

	// CompleteTask atomically appends the task id and adds its point value.
	// The same task id is never credited twice.
	CompleteTask(ctx context.Context, giveawayID string, userID int64, taskID string, points int) (*models.Participant, error)

	// CreditInvite atomically increments the referrer's invite count and
	// awards both bonuses, enforcing the cap and the once-per-invitee guard
	// inside the same transaction.
	CreditInvite(ctx context.Context, giveawayID string, referrerID, inviteeID int64, cap, referrerBonus, inviteeBonus int) error

	// HasAnyCompletion reports whether any participant of the giveaway has
	// the task in their completed set.
	HasAnyCompletion(ctx context.Context, giveawayID string, taskID string) (bool, error)
}
