package domain

import (
	"errors"
	"sort"
	"time"
)

// ErrNoPhasesConfigured signals an empty phase list. Callers must surface
// this as a configuration failure, never default to an open store.
var ErrNoPhasesConfigured = errors.New("no_phases_configured")

// ResolveActivePhase determines the single active phase at now.
//
// closed takes absolute precedence once its start time is reached. Otherwise
// the latest-starting phase whose starts_at has passed wins; before any
// configured start time the result is before_launch. The function is pure so
// the display path and the checkout authority path compute identical results
// from identical inputs.
//
// Phases sharing an identical starts_at resolve in unspecified order;
// configuration must keep start times strictly increasing.
func ResolveActivePhase(phases []Definition, now time.Time) (Name, error) {
	if len(phases) == 0 {
		return "", ErrNoPhasesConfigured
	}

	for _, p := range phases {
		if p.Name == Closed && !now.Before(p.StartsAt) {
			return Closed, nil
		}
	}

	sorted := make([]Definition, len(phases))
	copy(sorted, phases)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartsAt.After(sorted[j].StartsAt)
	})

	for _, p := range sorted {
		if p.Name == Closed {
			continue
		}
		if !now.Before(p.StartsAt) {
			return p.Name, nil
		}
	}

	return BeforeLaunch, nil
}
