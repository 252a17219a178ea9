package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cohortly/cohortly/internal/clock"
	enrollmentdomain "github.com/cohortly/cohortly/internal/enrollment/domain"
	"github.com/cohortly/cohortly/internal/enrollment/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (enrollmentdomain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&enrollmentdomain.Enrollment{}))

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

func TestRecordIsIdempotentPerSession(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	enrollment := &enrollmentdomain.Enrollment{
		UserID:            "user_1",
		CheckoutSessionID: "cs_123",
		CourseIDs:         datatypes.JSON(`["1234"]`),
		VariantIDs:        datatypes.JSON(`["5678"]`),
		TotalPricePaid:    80000,
		Currency:          "usd",
	}

	created, err := svc.Record(ctx, enrollment)
	require.NoError(t, err)
	assert.True(t, created)

	// A redelivered event for the same session must not create a second row.
	dup := &enrollmentdomain.Enrollment{
		UserID:            "user_1",
		CheckoutSessionID: "cs_123",
		CourseIDs:         datatypes.JSON(`["1234"]`),
		VariantIDs:        datatypes.JSON(`["5678"]`),
		TotalPricePaid:    80000,
		Currency:          "usd",
	}
	created, err = svc.Record(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Raw(
		`SELECT COUNT(*) FROM enrollments WHERE checkout_session_id = ?`, "cs_123",
	).Scan(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnrolledVariantIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, &enrollmentdomain.Enrollment{
		UserID:            "user_1",
		CheckoutSessionID: "cs_a",
		VariantIDs:        datatypes.JSON(`["101","102"]`),
		Currency:          "usd",
	})
	require.NoError(t, err)
	_, err = svc.Record(ctx, &enrollmentdomain.Enrollment{
		UserID:            "user_2",
		CheckoutSessionID: "cs_b",
		VariantIDs:        datatypes.JSON(`["103"]`),
		Currency:          "usd",
	})
	require.NoError(t, err)

	owned, err := svc.EnrolledVariantIDs(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, owned[snowflake.ID(101)])
	assert.True(t, owned[snowflake.ID(102)])
	assert.False(t, owned[snowflake.ID(103)])
}
