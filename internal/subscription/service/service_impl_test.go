package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cohortly/cohortly/internal/clock"
	subscriptiondomain "github.com/cohortly/cohortly/internal/subscription/domain"
	"github.com/cohortly/cohortly/internal/subscription/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (subscriptiondomain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&subscriptiondomain.Subscription{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Node:  node,
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	})
	return svc, db
}

func TestUpsertKeepsOneRowPerUser(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, &subscriptiondomain.Subscription{
		UserID:               "user_1",
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: "sub_1",
		Status:               subscriptiondomain.StatusTrialing,
	}))

	// A later lifecycle event for the same user overwrites, never duplicates.
	require.NoError(t, svc.Upsert(ctx, &subscriptiondomain.Subscription{
		UserID:               "user_1",
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: "sub_2",
		Status:               subscriptiondomain.StatusActive,
	}))

	var count int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM subscriptions WHERE user_id = ?`, "user_1").Scan(&count).Error)
	assert.EqualValues(t, 1, count)

	sub, err := svc.ByUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_2", sub.StripeSubscriptionID)
	assert.Equal(t, subscriptiondomain.StatusActive, sub.Status)
}

func TestDeleteByUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, &subscriptiondomain.Subscription{
		UserID:               "user_1",
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: "sub_1",
		Status:               subscriptiondomain.StatusActive,
	}))
	require.NoError(t, svc.DeleteByUser(ctx, "user_1"))

	_, err := svc.ByUser(ctx, "user_1")
	assert.ErrorIs(t, err, subscriptiondomain.ErrSubscriptionNotFound)
}
