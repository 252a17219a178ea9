package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/cohortly/cohortly/internal/catalog/domain"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) ListCourses(ctx context.Context, tx *gorm.DB) ([]catalogdomain.Course, error) {
	var courses []catalogdomain.Course
	err := tx.WithContext(ctx).Raw(
		`SELECT id, name, slug, description, status, created_at, updated_at
		 FROM courses
		 WHERE status = ?
		 ORDER BY created_at ASC`,
		catalogdomain.StatusActive,
	).Scan(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repo) ListCohorts(ctx context.Context, tx *gorm.DB) ([]catalogdomain.Cohort, error) {
	var cohorts []catalogdomain.Cohort
	err := tx.WithContext(ctx).Raw(
		`SELECT id, name, slug, description, starts_on, status, created_at, updated_at
		 FROM cohorts
		 WHERE status = ?
		 ORDER BY starts_on ASC`,
		catalogdomain.StatusActive,
	).Scan(&cohorts).Error
	if err != nil {
		return nil, err
	}
	return cohorts, nil
}

func (r *repo) FindCourseBySlug(ctx context.Context, tx *gorm.DB, slug string) (*catalogdomain.Course, error) {
	var course catalogdomain.Course
	err := tx.WithContext(ctx).Raw(
		`SELECT id, name, slug, description, status, created_at, updated_at
		 FROM courses
		 WHERE slug = ?`,
		slug,
	).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogdomain.ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (r *repo) FindCohortBySlug(ctx context.Context, tx *gorm.DB, slug string) (*catalogdomain.Cohort, error) {
	var cohort catalogdomain.Cohort
	err := tx.WithContext(ctx).Raw(
		`SELECT id, name, slug, description, starts_on, status, created_at, updated_at
		 FROM cohorts
		 WHERE slug = ?`,
		slug,
	).First(&cohort).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogdomain.ErrCohortNotFound
		}
		return nil, err
	}
	return &cohort, nil
}

func (r *repo) ListVariants(ctx context.Context, tx *gorm.DB, kind phasedomain.ParentKind, parentID snowflake.ID) ([]catalogdomain.Variant, error) {
	var variants []catalogdomain.Variant
	err := tx.WithContext(ctx).Raw(
		`SELECT id, parent_kind, parent_id, name, price_phase_1, price_phase_2,
		 status, created_at, updated_at
		 FROM catalog_variants
		 WHERE parent_kind = ? AND parent_id = ?
		 ORDER BY price_phase_1 ASC`,
		kind,
		parentID,
	).Scan(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *repo) FindVariantByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*catalogdomain.Variant, error) {
	var variant catalogdomain.Variant
	err := tx.WithContext(ctx).Raw(
		`SELECT id, parent_kind, parent_id, name, price_phase_1, price_phase_2,
		 status, created_at, updated_at
		 FROM catalog_variants
		 WHERE id = ?`,
		id,
	).First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogdomain.ErrVariantNotFound
		}
		return nil, err
	}
	return &variant, nil
}

func (r *repo) CreateCourse(ctx context.Context, tx *gorm.DB, course *catalogdomain.Course) error {
	return tx.WithContext(ctx).Create(course).Error
}

func (r *repo) CreateCohort(ctx context.Context, tx *gorm.DB, cohort *catalogdomain.Cohort) error {
	return tx.WithContext(ctx).Create(cohort).Error
}

func (r *repo) CreateVariant(ctx context.Context, tx *gorm.DB, variant *catalogdomain.Variant) error {
	return tx.WithContext(ctx).Create(variant).Error
}
