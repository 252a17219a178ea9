// Package scheduler runs the periodic phase broadcast job: it re-resolves
// the active phase from starts_at values, persists the activation flags, and
// fans out at most one announcement per phase activation.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cohortly/cohortly/internal/clock"
	"github.com/cohortly/cohortly/internal/config"
	notifydomain "github.com/cohortly/cohortly/internal/notify/domain"
	"github.com/cohortly/cohortly/internal/observability/metrics"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	"github.com/cohortly/cohortly/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	jobPhaseBroadcast = "phase_broadcast"

	broadcastLockKey = "scheduler:phase_broadcast"
	broadcastLockTTL = 5 * time.Minute
	jobTimeout       = 2 * time.Minute
)

var ErrInvalidConfig = errors.New("scheduler_config_invalid")

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Holder      *config.BroadcastConfigHolder
	Clock       clock.Clock
	PhaseRepo   phasedomain.Repository
	Broadcaster notifydomain.Broadcaster
	Metrics     *metrics.Metrics
	Locker      *ratelimit.Locker `optional:"true"`
}

type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	holder      *config.BroadcastConfigHolder
	clock       clock.Clock
	phaseRepo   phasedomain.Repository
	broadcaster notifydomain.Broadcaster
	metrics     *metrics.Metrics
	locker      *ratelimit.Locker
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Holder == nil || p.Clock == nil || p.PhaseRepo == nil || p.Broadcaster == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler"),
		holder:      p.Holder,
		clock:       p.Clock,
		phaseRepo:   p.PhaseRepo,
		broadcaster: p.Broadcaster,
		metrics:     p.Metrics,
		locker:      p.Locker,
	}, nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	if !s.isJobEnabled(jobPhaseBroadcast) {
		return nil
	}

	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()

	// Only one instance may run the job at a time; overlapping runs would
	// race the activation transition. Without redis the deployment is
	// single-instance and the lock degrades to a no-op.
	if s.locker != nil {
		token, acquired, err := s.locker.TryLock(ctx, broadcastLockKey, broadcastLockTTL)
		if err != nil {
			return err
		}
		if !acquired {
			s.log.Debug("phase broadcast lock held elsewhere, skipping run")
			return nil
		}
		defer func() {
			if err := s.locker.Release(ctx, broadcastLockKey, token); err != nil {
				s.log.Warn("failed to release broadcast lock", zap.Error(err))
			}
		}()
	}

	return s.PhaseBroadcastJob(ctx)
}

// PhaseBroadcastJob recomputes the active phase and reconciles the
// persisted flags. is_active is display/audit state only; resolution always
// derives from starts_at so a checkout racing this job near a boundary still
// observes the correct phase.
func (s *Scheduler) PhaseBroadcastJob(ctx context.Context) error {
	phases, err := s.phaseRepo.ListGlobal(ctx, s.db)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	active, err := phasedomain.ResolveActivePhase(phases, now)
	if err != nil {
		// Zero phases configured is an operational failure, not a
		// quiet default.
		s.log.Error("phase resolution failed", zap.Error(err))
		return err
	}

	definition := findDefinition(phases, active)
	if definition == nil {
		// before_launch can be implicit (no definition row); there is
		// nothing to activate or announce.
		s.log.Debug("resolved phase has no definition row",
			zap.String("phase", string(active)))
		return nil
	}

	if !definition.IsActive {
		if err := s.phaseRepo.SetActive(ctx, s.db, definition.ID); err != nil {
			return err
		}
		s.log.Info("phase activated",
			zap.String("phase", string(active)),
			zap.Time("starts_at", definition.StartsAt))
	}

	if definition.NotificationTemplateID == nil || definition.NotificationSent {
		return nil
	}

	// Compare-and-swap on notification_sent is the idempotency guard: of
	// two concurrent runs, exactly one claims the broadcast.
	claimed, err := s.phaseRepo.ClaimNotification(ctx, s.db, definition.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	result, err := s.broadcaster.Broadcast(ctx, *definition.NotificationTemplateID)
	if err != nil {
		// The claim is not rolled back: a phase announcement that
		// failed mid-flight must not be re-fired at every tick.
		s.log.Error("phase broadcast failed",
			zap.String("phase", string(active)),
			zap.Int("template_id", *definition.NotificationTemplateID),
			zap.Error(err))
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordBroadcast(ctx, string(active), int64(result.Recipients))
	}
	s.log.Info("phase broadcast sent",
		zap.String("phase", string(active)),
		zap.Int("recipients", result.Recipients),
		zap.Int("failed", result.Failed))
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	interval := s.holder.Current().RunInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		// Interval changes picked up on the next tick.
		if next := s.holder.Current().RunInterval; next != interval {
			interval = next
			ticker.Reset(interval)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	enabled := s.holder.Current().EnabledJobs
	// Empty means all jobs run (monolith mode).
	if len(enabled) == 0 {
		return true
	}
	for _, name := range enabled {
		if strings.EqualFold(name, jobName) {
			return true
		}
	}
	return false
}

func findDefinition(phases []phasedomain.Definition, name phasedomain.Name) *phasedomain.Definition {
	for i := range phases {
		if phases[i].Name == name {
			return &phases[i]
		}
	}
	return nil
}
