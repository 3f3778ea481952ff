package notify

import (
	"context"

	gmodels "giveaway-engine-backend/internal/features/giveaway/models"
)

// Dispatcher delivers out-of-band notifications. Failures are the caller's
// to log and swallow; a lost notification never rolls back the event that
// triggered it.
type Dispatcher interface {
	WinnerSelected(ctx context.Context, userID int64, giveaway *gmodels.Giveaway) error
}

type noop struct{}

// NewNoop returns a dispatcher that drops every notification. Used when no
// bot token is configured and in tests.
func NewNoop() Dispatcher {
	return noop{}
}

func (noop) WinnerSelected(ctx context.Context, userID int64, giveaway *gmodels.Giveaway) error {
	return nil
}
