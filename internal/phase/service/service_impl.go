package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/cohortly/cohortly/internal/clock"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  phasedomain.Repository
	Clock clock.Clock
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  phasedomain.Repository
	clock clock.Clock
}

func New(p Params) phasedomain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("phase.service"),
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *service) ListGlobal(ctx context.Context) ([]phasedomain.Definition, error) {
	return s.repo.ListGlobal(ctx, s.db)
}

func (s *service) Active(ctx context.Context) (phasedomain.Name, error) {
	phases, err := s.repo.ListGlobal(ctx, s.db)
	if err != nil {
		return "", err
	}
	return s.resolve(phases)
}

func (s *service) Governing(ctx context.Context, kind phasedomain.ParentKind, parentID snowflake.ID) (phasedomain.Name, error) {
	scoped, err := s.repo.ListForParent(ctx, s.db, kind, parentID)
	if err != nil {
		return "", err
	}
	if len(scoped) > 0 {
		return s.resolve(scoped)
	}
	return s.Active(ctx)
}

func (s *service) resolve(phases []phasedomain.Definition) (phasedomain.Name, error) {
	name, err := phasedomain.ResolveActivePhase(phases, s.clock.Now())
	if err != nil {
		if errors.Is(err, phasedomain.ErrNoPhasesConfigured) {
			s.log.Error("no phase definitions configured")
			return "", phasedomain.ErrNoActivePhase
		}
		return "", err
	}
	return name, nil
}
