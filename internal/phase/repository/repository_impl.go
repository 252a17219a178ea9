package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() phasedomain.Repository {
	return &repo{}
}

func (r *repo) ListGlobal(ctx context.Context, db *gorm.DB) ([]phasedomain.Definition, error) {
	var phases []phasedomain.Definition
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, starts_at, parent_kind, parent_id, is_active,
		 notification_template_id, notification_sent, created_at, updated_at
		 FROM phase_definitions
		 WHERE parent_kind IS NULL
		 ORDER BY starts_at DESC`,
	).Scan(&phases).Error
	if err != nil {
		return nil, err
	}
	return phases, nil
}

func (r *repo) ListForParent(ctx context.Context, db *gorm.DB, kind phasedomain.ParentKind, parentID snowflake.ID) ([]phasedomain.Definition, error) {
	var phases []phasedomain.Definition
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, starts_at, parent_kind, parent_id, is_active,
		 notification_template_id, notification_sent, created_at, updated_at
		 FROM phase_definitions
		 WHERE parent_kind = ? AND parent_id = ?
		 ORDER BY starts_at DESC`,
		kind,
		parentID,
	).Scan(&phases).Error
	if err != nil {
		return nil, err
	}
	return phases, nil
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`UPDATE phase_definitions
			 SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP
			 WHERE parent_kind IS NULL AND is_active = TRUE AND id <> ?`,
			id,
		).Error; err != nil {
			return err
		}
		return tx.Exec(
			`UPDATE phase_definitions
			 SET is_active = TRUE, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			id,
		).Error
	})
}

func (r *repo) ClaimNotification(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE phase_definitions
		 SET notification_sent = TRUE, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND notification_sent = FALSE`,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
