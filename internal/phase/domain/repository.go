package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListGlobal(ctx context.Context, db *gorm.DB) ([]Definition, error)
	ListForParent(ctx context.Context, db *gorm.DB, kind ParentKind, parentID snowflake.ID) ([]Definition, error)
	// SetActive flips is_active on for id and off for every other global
	// definition in one transaction, preserving the single-active invariant.
	SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// ClaimNotification flips notification_sent from false to true and
	// reports whether this caller won the claim. Compare-and-swap so
	// overlapping job invocations broadcast at most once.
	ClaimNotification(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
