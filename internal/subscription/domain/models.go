// Package domain tracks recurring membership state mirrored from the payment
// provider. The provider is the source of truth; rows here are a cache kept
// fresh by webhook reconciliation, keyed one-per-user.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrSubscriptionNotFound = errors.New("subscription_not_found")

type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusPastDue  Status = "past_due"
	StatusUnpaid   Status = "unpaid"
	StatusCanceled Status = "canceled"
)

type Subscription struct {
	ID                   snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID               string            `gorm:"type:text;not null;uniqueIndex" json:"user_id"`
	StripeCustomerID     string            `gorm:"type:text;not null" json:"stripe_customer_id"`
	StripeSubscriptionID string            `gorm:"type:text;not null" json:"stripe_subscription_id"`
	Status               Status            `gorm:"type:text;not null" json:"status"`
	CurrentPeriodStart   *time.Time        `gorm:"" json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time        `gorm:"" json:"current_period_end,omitempty"`
	Metadata             datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

type Repository interface {
	// Upsert writes the subscription, overwriting any prior row for the
	// same user. A new subscription replaces tracking of an old one.
	Upsert(ctx context.Context, tx *gorm.DB, sub *Subscription) error
	FindByUser(ctx context.Context, tx *gorm.DB, userID string) (*Subscription, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID string) error
}

type Service interface {
	Upsert(ctx context.Context, sub *Subscription) error
	ByUser(ctx context.Context, userID string) (*Subscription, error)
	DeleteByUser(ctx context.Context, userID string) error
}
