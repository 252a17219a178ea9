package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/cohortly/cohortly/internal/clock"
	subscriptiondomain "github.com/cohortly/cohortly/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Node  *snowflake.Node
	Repo  subscriptiondomain.Repository
	Clock clock.Clock
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	node  *snowflake.Node
	repo  subscriptiondomain.Repository
	clock clock.Clock
}

func New(p Params) subscriptiondomain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		node:  p.Node,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *service) Upsert(ctx context.Context, sub *subscriptiondomain.Subscription) error {
	now := s.clock.Now()
	if sub.ID == 0 {
		sub.ID = s.node.Generate()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	return s.repo.Upsert(ctx, s.db, sub)
}

func (s *service) ByUser(ctx context.Context, userID string) (*subscriptiondomain.Subscription, error) {
	return s.repo.FindByUser(ctx, s.db, userID)
}

func (s *service) DeleteByUser(ctx context.Context, userID string) error {
	s.log.Info("removing subscription tracking", zap.String("user_id", userID))
	return s.repo.DeleteByUser(ctx, s.db, userID)
}
