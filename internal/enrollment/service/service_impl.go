package service

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/cohortly/cohortly/internal/clock"
	enrollmentdomain "github.com/cohortly/cohortly/internal/enrollment/domain"
	"github.com/cohortly/cohortly/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Node  *snowflake.Node
	Repo  enrollmentdomain.Repository
	Clock clock.Clock
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	node  *snowflake.Node
	repo  enrollmentdomain.Repository
	clock clock.Clock
}

func New(p Params) enrollmentdomain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("enrollment.service"),
		node:  p.Node,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *service) Record(ctx context.Context, enrollment *enrollmentdomain.Enrollment) (bool, error) {
	if enrollment.ID == 0 {
		enrollment.ID = s.node.Generate()
	}
	if enrollment.Status == "" {
		enrollment.Status = "completed"
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = s.clock.Now()
	}

	created, err := s.repo.Insert(ctx, s.db, enrollment)
	if err != nil {
		// SQLite surfaces the conflict as an error instead of a zero
		// rowcount; both mean the session was already applied.
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	if !created {
		s.log.Info("enrollment already recorded",
			zap.String("checkout_session_id", enrollment.CheckoutSessionID))
	}
	return created, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]enrollmentdomain.Enrollment, error) {
	return s.repo.ListByUser(ctx, s.db, userID)
}

func (s *service) EnrolledVariantIDs(ctx context.Context, userID string) (map[snowflake.ID]bool, error) {
	enrollments, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	owned := make(map[snowflake.ID]bool)
	for _, e := range enrollments {
		if len(e.VariantIDs) == 0 {
			continue
		}
		var ids []snowflake.ID
		if err := json.Unmarshal(e.VariantIDs, &ids); err != nil {
			s.log.Warn("skipping enrollment with unreadable variant ids",
				zap.String("checkout_session_id", e.CheckoutSessionID),
				zap.Error(err))
			continue
		}
		for _, id := range ids {
			owned[id] = true
		}
	}
	return owned, nil
}
