package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var ErrNoActivePhase = errors.New("no_active_phase")

// Service resolves phases from persisted definitions. Active is the server
// authority path: it re-reads starts_at values on every call rather than
// trusting the is_active flag, so a checkout racing the broadcast job near a
// phase boundary still observes the correct window.
type Service interface {
	ListGlobal(ctx context.Context) ([]Definition, error)
	Active(ctx context.Context) (Name, error)
	// Governing returns the phase gating a specific catalog parent: its own
	// schedule when one exists, the global schedule otherwise.
	Governing(ctx context.Context, kind ParentKind, parentID snowflake.ID) (Name, error)
}
