package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Entry is a structured record of an operator action.
type Entry struct {
	ActorID  int64
	Action   string
	Resource string
	Details  map[string]interface{}
}

// Logger receives operator-action records for compliance. Implementations
// must never fail the operation being audited.
type Logger interface {
	Record(ctx context.Context, e Entry)
}

type zerologAudit struct{}

// NewZerologAudit returns a Logger that writes audit entries to the service log.
func NewZerologAudit() Logger {
	return &zerologAudit{}
}

func (a *zerologAudit) Record(ctx context.Context, e Entry) {
	evt := log.Info().
		Str("audit", "true").
		Int64("actor_id", e.ActorID).
		Str("action", e.Action).
		Str("resource", e.Resource).
		Time("at", time.Now())

	if len(e.Details) > 0 {
		evt = evt.Dict("details", dict(e.Details))
	}

	evt.Msg("operator action")
}

func dict(m map[string]interface{}) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Interface(k, v)
	}
	return d
}
