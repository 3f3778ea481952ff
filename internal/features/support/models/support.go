package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Support is one monetary contribution pledged toward a giveaway's prize pool.
// Entries are append-only; there is no edit or refund path.
type Support struct {
	ID          string          `json:"id"`
	GiveawayID  string          `json:"giveaway_id"`
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	IsAnonymous bool            `json:"is_anonymous"`
	DisplayName string          `json:"display_name,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SupportCreate represents data for pledging a contribution.
type SupportCreate struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	IsAnonymous bool            `json:"is_anonymous"`
	DisplayName string          `json:"display_name" binding:"max=100"`
}

// SupportTotals aggregates every contribution for a giveaway.
type SupportTotals struct {
	GiveawayID     string          `json:"giveaway_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	SupporterCount int             `json:"supporter_count"`
}

// SupporterView is a single entry on the public supporter board. Anonymous
// supporters are masked for everyone but admins.
type SupporterView struct {
	DisplayName string          `json:"display_name"`
	Amount      decimal.Decimal `json:"amount"`
	IsAnonymous bool            `json:"is_anonymous"`
	CreatedAt   time.Time       `json:"created_at"`

	// UserID is only populated for admin callers.
	UserID int64 `json:"user_id,omitempty"`
}
