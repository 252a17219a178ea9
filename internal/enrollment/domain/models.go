// Package domain holds the persisted outcome of a completed one-time
// checkout. Rows are written once by the webhook reconciler and never
// mutated afterwards.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrollment records a paid one-time purchase. CheckoutSessionID is the
// idempotency key: redelivered provider events for the same session must not
// produce a second row.
type Enrollment struct {
	ID                snowflake.ID   `gorm:"primaryKey" json:"id"`
	UserID            string         `gorm:"type:text;not null;index" json:"user_id"`
	CheckoutSessionID string         `gorm:"type:text;not null;uniqueIndex" json:"checkout_session_id"`
	CourseIDs         datatypes.JSON `gorm:"type:jsonb" json:"course_ids"`
	VariantIDs        datatypes.JSON `gorm:"type:jsonb" json:"variant_ids"`
	TotalPricePaid    int64          `gorm:"not null" json:"total_price_paid"`
	Currency          string         `gorm:"type:text;not null" json:"currency"`
	Status            string         `gorm:"type:text;not null;default:'completed'" json:"status"`
	CreatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Enrollment) TableName() string { return "enrollments" }

type Repository interface {
	// Insert writes the enrollment unless one already exists for its
	// checkout session. Returns false when the row was already present.
	Insert(ctx context.Context, tx *gorm.DB, enrollment *Enrollment) (bool, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]Enrollment, error)
	CountBySession(ctx context.Context, tx *gorm.DB, checkoutSessionID string) (int64, error)
}

type Service interface {
	// Record persists a completed checkout. A duplicate session id is a
	// benign no-op, reported via the created flag.
	Record(ctx context.Context, enrollment *Enrollment) (created bool, err error)
	ListByUser(ctx context.Context, userID string) ([]Enrollment, error)
	// EnrolledVariantIDs reports which of the user's paid variants exist,
	// for enrollment gating on the selection path.
	EnrolledVariantIDs(ctx context.Context, userID string) (map[snowflake.ID]bool, error)
}
