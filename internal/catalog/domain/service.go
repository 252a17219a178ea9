package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrCourseNotFound  = errors.New("course_not_found")
	ErrCohortNotFound  = errors.New("cohort_not_found")
	ErrVariantNotFound = errors.New("variant_not_found")
)

// PricedVariant is a variant annotated with the amount it sells for under the
// phase the caller resolved. Available is false when the variant cannot be
// purchased right now.
type PricedVariant struct {
	Variant
	Amount    int64 `json:"amount"`
	Available bool  `json:"available"`
}

type Service interface {
	ListCourses(ctx context.Context) ([]Course, error)
	ListCohorts(ctx context.Context) ([]Cohort, error)

	// CourseBySlug and CohortBySlug return the offering together with its
	// variants priced for the phase governing each variant.
	CourseBySlug(ctx context.Context, slug string) (*Course, []PricedVariant, error)
	CohortBySlug(ctx context.Context, slug string) (*Cohort, []PricedVariant, error)

	Variant(ctx context.Context, id snowflake.ID) (*Variant, error)
}
