package models

import (
	"time"
)

// Task is an admin-owned action participants complete to earn points.
// Required tasks gate eligibility for the winner draw.
type Task struct {
	ID          string    `json:"id"`
	GiveawayID  string    `json:"giveaway_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
	PointValue  int       `json:"point_value"`

	// MinDuration is the minimum elapsed seconds between starting and
	// completing the task. 0 disables the anti-cheat check.
	MinDuration int64 `json:"min_duration,omitempty"`

	// Retired tasks stay on record so historical completions keep their
	// meaning, but can no longer be completed.
	Retired bool `json:"retired,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskCreate represents data for defining a new task.
type TaskCreate struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=1000"`
	Required    bool   `json:"required"`
	PointValue  int    `json:"point_value" binding:"required,min=1"`
	MinDuration int64  `json:"min_duration" binding:"min=0"`
}

// TaskUpdate is a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=1000"`
	Required    *bool   `json:"required,omitempty"`
	PointValue  *int    `json:"point_value,omitempty" binding:"omitempty,min=1"`
	MinDuration *int64  `json:"min_duration,omitempty" binding:"omitempty,min=0"`
}
