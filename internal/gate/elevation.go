package gate

import (
	"context"
	"time"

	"github.com/osse101/pointshop/internal/domain"
)

// Elevation is a short-lived capability to run one command with the privilege
// the caller paid for. It lives only in the context handed to that command.
type Elevation struct {
	Identity  domain.Identity
	Command   string
	GrantID   int64
	ExpiresAt time.Time
}

// ActiveAt reports whether the elevation still holds at t
func (e Elevation) ActiveAt(t time.Time) bool {
	return t.Before(e.ExpiresAt)
}

type elevationKey struct{}

// WithElevation returns a child of ctx carrying an Elevation for a consumed
// decision. Any other decision returns ctx unchanged.
func (g *Gate) WithElevation(ctx context.Context, user domain.Identity, d domain.GateDecision) context.Context {
	if d.Outcome != domain.GateConsumed {
		return ctx
	}
	return context.WithValue(ctx, elevationKey{}, Elevation{
		Identity:  user,
		Command:   d.Command,
		GrantID:   d.GrantID,
		ExpiresAt: g.now().Add(g.elevationTTL),
	})
}

// ElevationFromContext returns the elevation carried by ctx, if any
func ElevationFromContext(ctx context.Context) (Elevation, bool) {
	e, ok := ctx.Value(elevationKey{}).(Elevation)
	return e, ok
}

// Elevated reports whether ctx carries a live elevation for user and command
func (g *Gate) Elevated(ctx context.Context, user domain.Identity, command string) bool {
	e, ok := ElevationFromContext(ctx)
	return ok && e.Identity == user && e.Command == command && e.ActiveAt(g.now())
}
