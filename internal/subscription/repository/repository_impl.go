package repository

import (
	"context"
	"errors"

	subscriptiondomain "github.com/cohortly/cohortly/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, tx *gorm.DB, sub *subscriptiondomain.Subscription) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO subscriptions (
			id, user_id, stripe_customer_id, stripe_subscription_id, status,
			current_period_start, current_period_end, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			stripe_customer_id = excluded.stripe_customer_id,
			stripe_subscription_id = excluded.stripe_subscription_id,
			status = excluded.status,
			current_period_start = excluded.current_period_start,
			current_period_end = excluded.current_period_end,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		sub.ID,
		sub.UserID,
		sub.StripeCustomerID,
		sub.StripeSubscriptionID,
		sub.Status,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.Metadata,
		sub.CreatedAt,
		sub.UpdatedAt,
	).Error
}

func (r *repo) FindByUser(ctx context.Context, tx *gorm.DB, userID string) (*subscriptiondomain.Subscription, error) {
	var sub subscriptiondomain.Subscription
	err := tx.WithContext(ctx).Raw(
		`SELECT id, user_id, stripe_customer_id, stripe_subscription_id, status,
		 current_period_start, current_period_end, metadata, created_at, updated_at
		 FROM subscriptions
		 WHERE user_id = ?`,
		userID,
	).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscriptiondomain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID string) error {
	return tx.WithContext(ctx).Exec(
		`DELETE FROM subscriptions WHERE user_id = ?`,
		userID,
	).Error
}
