package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func launchSchedule(base time.Time) []Definition {
	return []Definition{
		{Name: BeforeLaunch, StartsAt: base},
		{Name: PhaseOne, StartsAt: base.Add(100 * time.Second)},
		{Name: PhaseTwo, StartsAt: base.Add(200 * time.Second)},
		{Name: Closed, StartsAt: base.Add(300 * time.Second)},
	}
}

func TestResolveActivePhase(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	phases := launchSchedule(base)

	tests := []struct {
		name string
		now  time.Time
		want Name
	}{
		{"before any start", base.Add(-time.Hour), BeforeLaunch},
		{"during before_launch window", base.Add(50 * time.Second), BeforeLaunch},
		{"exactly at phase_1 start", base.Add(100 * time.Second), PhaseOne},
		{"mid phase_1", base.Add(150 * time.Second), PhaseOne},
		{"mid phase_2", base.Add(250 * time.Second), PhaseTwo},
		{"exactly at close", base.Add(300 * time.Second), Closed},
		{"long after close", base.Add(48 * time.Hour), Closed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveActivePhase(phases, tc.now)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveActivePhaseDeterministic(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	phases := launchSchedule(base)
	now := base.Add(150 * time.Second)

	first, err := ResolveActivePhase(phases, now)
	assert.NoError(t, err)
	second, err := ResolveActivePhase(phases, now)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveActivePhaseClosedPrecedence(t *testing.T) {
	// closed wins even when another phase starts later.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	phases := []Definition{
		{Name: Closed, StartsAt: base},
		{Name: PhaseTwo, StartsAt: base.Add(time.Hour)},
	}

	got, err := ResolveActivePhase(phases, base.Add(2*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, Closed, got)
}

func TestResolveActivePhaseInputOrderIrrelevant(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	phases := launchSchedule(base)
	shuffled := []Definition{phases[2], phases[0], phases[3], phases[1]}

	now := base.Add(250 * time.Second)
	fromOrdered, err := ResolveActivePhase(phases, now)
	assert.NoError(t, err)
	fromShuffled, err := ResolveActivePhase(shuffled, now)
	assert.NoError(t, err)
	assert.Equal(t, fromOrdered, fromShuffled)
}

func TestResolveActivePhaseEmpty(t *testing.T) {
	_, err := ResolveActivePhase(nil, time.Now())
	assert.ErrorIs(t, err, ErrNoPhasesConfigured)
}
