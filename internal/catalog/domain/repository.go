package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	"gorm.io/gorm"
)

type Repository interface {
	ListCourses(ctx context.Context, tx *gorm.DB) ([]Course, error)
	ListCohorts(ctx context.Context, tx *gorm.DB) ([]Cohort, error)
	FindCourseBySlug(ctx context.Context, tx *gorm.DB, slug string) (*Course, error)
	FindCohortBySlug(ctx context.Context, tx *gorm.DB, slug string) (*Cohort, error)
	ListVariants(ctx context.Context, tx *gorm.DB, kind phasedomain.ParentKind, parentID snowflake.ID) ([]Variant, error)
	FindVariantByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Variant, error)
	CreateCourse(ctx context.Context, tx *gorm.DB, course *Course) error
	CreateCohort(ctx context.Context, tx *gorm.DB, cohort *Cohort) error
	CreateVariant(ctx context.Context, tx *gorm.DB, variant *Variant) error
}
