package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/cohortly/cohortly/internal/clock"
	"github.com/cohortly/cohortly/internal/config"
	notifydomain "github.com/cohortly/cohortly/internal/notify/domain"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	phaserepo "github.com/cohortly/cohortly/internal/phase/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type countingBroadcaster struct {
	calls      int
	templateID int
}

func (c *countingBroadcaster) Broadcast(ctx context.Context, templateID int) (notifydomain.BroadcastResult, error) {
	c.calls++
	c.templateID = templateID
	return notifydomain.BroadcastResult{Recipients: 3}, nil
}

func intPtr(v int) *int { return &v }

func newTestScheduler(t *testing.T, fake *clock.FakeClock) (*Scheduler, *gorm.DB, *countingBroadcaster) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&phasedomain.Definition{}))

	holder, err := config.NewBroadcastConfigHolder()
	require.NoError(t, err)

	broadcaster := &countingBroadcaster{}
	sched, err := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		Holder:      holder,
		Clock:       fake,
		PhaseRepo:   phaserepo.Provide(),
		Broadcaster: broadcaster,
	})
	require.NoError(t, err)
	return sched, db, broadcaster
}

func seedPhases(t *testing.T, db *gorm.DB, base time.Time) {
	t.Helper()
	phases := []phasedomain.Definition{
		{ID: 1, Name: phasedomain.BeforeLaunch, StartsAt: base},
		{ID: 2, Name: phasedomain.PhaseOne, StartsAt: base.Add(24 * time.Hour), NotificationTemplateID: intPtr(1)},
		{ID: 3, Name: phasedomain.PhaseTwo, StartsAt: base.Add(48 * time.Hour), NotificationTemplateID: intPtr(2)},
		{ID: 4, Name: phasedomain.Closed, StartsAt: base.Add(72 * time.Hour)},
	}
	for i := range phases {
		require.NoError(t, db.Create(&phases[i]).Error)
	}
}

func TestPhaseActivationAndSingleBroadcast(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(base.Add(30 * time.Hour)) // inside phase_1
	sched, db, broadcaster := newTestScheduler(t, fake)
	seedPhases(t, db, base)

	require.NoError(t, sched.RunOnce(context.Background()))

	var active phasedomain.Definition
	require.NoError(t, db.Raw(`SELECT * FROM phase_definitions WHERE is_active = TRUE`).First(&active).Error)
	assert.Equal(t, phasedomain.PhaseOne, active.Name)
	assert.True(t, active.NotificationSent)
	assert.Equal(t, 1, broadcaster.calls)
	assert.Equal(t, 1, broadcaster.templateID)

	// Running every minute must not re-broadcast.
	require.NoError(t, sched.RunOnce(context.Background()))
	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 1, broadcaster.calls)
}

func TestPhaseTransitionMovesActivation(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(base.Add(30 * time.Hour))
	sched, db, broadcaster := newTestScheduler(t, fake)
	seedPhases(t, db, base)

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 1, broadcaster.calls)

	// Advance past the phase_2 boundary; activation moves, second template
	// fires exactly once.
	fake.Advance(24 * time.Hour)
	require.NoError(t, sched.RunOnce(context.Background()))
	require.NoError(t, sched.RunOnce(context.Background()))

	var activeCount int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM phase_definitions WHERE is_active = TRUE`).Scan(&activeCount).Error)
	assert.EqualValues(t, 1, activeCount)

	var active phasedomain.Definition
	require.NoError(t, db.Raw(`SELECT * FROM phase_definitions WHERE is_active = TRUE`).First(&active).Error)
	assert.Equal(t, phasedomain.PhaseTwo, active.Name)
	assert.Equal(t, 2, broadcaster.calls)
	assert.Equal(t, 2, broadcaster.templateID)
}

func TestClosedPhaseActivatesWithoutBroadcast(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(base.Add(100 * time.Hour)) // past closed
	sched, db, broadcaster := newTestScheduler(t, fake)
	seedPhases(t, db, base)

	require.NoError(t, sched.RunOnce(context.Background()))

	var active phasedomain.Definition
	require.NoError(t, db.Raw(`SELECT * FROM phase_definitions WHERE is_active = TRUE`).First(&active).Error)
	assert.Equal(t, phasedomain.Closed, active.Name)
	assert.Zero(t, broadcaster.calls)
}

func TestNoPhasesConfiguredSurfacesError(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	sched, _, _ := newTestScheduler(t, fake)

	err := sched.RunOnce(context.Background())
	assert.ErrorIs(t, err, phasedomain.ErrNoPhasesConfigured)
}
