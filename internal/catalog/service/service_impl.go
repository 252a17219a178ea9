package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/cohortly/cohortly/internal/catalog/domain"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   catalogdomain.Repository
	Phases phasedomain.Service
}

type service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   catalogdomain.Repository
	phases phasedomain.Service
}

func New(p Params) catalogdomain.Service {
	return &service{
		db:     p.DB,
		log:    p.Log.Named("catalog.service"),
		repo:   p.Repo,
		phases: p.Phases,
	}
}

func (s *service) ListCourses(ctx context.Context) ([]catalogdomain.Course, error) {
	return s.repo.ListCourses(ctx, s.db)
}

func (s *service) ListCohorts(ctx context.Context) ([]catalogdomain.Cohort, error) {
	return s.repo.ListCohorts(ctx, s.db)
}

func (s *service) CourseBySlug(ctx context.Context, slug string) (*catalogdomain.Course, []catalogdomain.PricedVariant, error) {
	course, err := s.repo.FindCourseBySlug(ctx, s.db, slug)
	if err != nil {
		return nil, nil, err
	}
	priced, err := s.pricedVariants(ctx, phasedomain.ParentCourse, course.ID)
	if err != nil {
		return nil, nil, err
	}
	return course, priced, nil
}

func (s *service) CohortBySlug(ctx context.Context, slug string) (*catalogdomain.Cohort, []catalogdomain.PricedVariant, error) {
	cohort, err := s.repo.FindCohortBySlug(ctx, s.db, slug)
	if err != nil {
		return nil, nil, err
	}
	priced, err := s.pricedVariants(ctx, phasedomain.ParentCohort, cohort.ID)
	if err != nil {
		return nil, nil, err
	}
	return cohort, priced, nil
}

func (s *service) Variant(ctx context.Context, id snowflake.ID) (*catalogdomain.Variant, error) {
	return s.repo.FindVariantByID(ctx, s.db, id)
}

func (s *service) pricedVariants(ctx context.Context, kind phasedomain.ParentKind, parentID snowflake.ID) ([]catalogdomain.PricedVariant, error) {
	variants, err := s.repo.ListVariants(ctx, s.db, kind, parentID)
	if err != nil {
		return nil, err
	}
	phase, err := s.phases.Governing(ctx, kind, parentID)
	if err != nil {
		return nil, err
	}

	priced := make([]catalogdomain.PricedVariant, 0, len(variants))
	for _, v := range variants {
		amount, ok := catalogdomain.Price(phase, v)
		priced = append(priced, catalogdomain.PricedVariant{
			Variant:   v,
			Amount:    amount,
			Available: ok,
		})
	}
	return priced, nil
}
