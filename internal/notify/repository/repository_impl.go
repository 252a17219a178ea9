package repository

import (
	"context"
	"errors"

	notifydomain "github.com/cohortly/cohortly/internal/notify/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() notifydomain.Repository {
	return &repo{}
}

func (r *repo) ListSubscribers(ctx context.Context, tx *gorm.DB) ([]notifydomain.Subscriber, error) {
	var subscribers []notifydomain.Subscriber
	err := tx.WithContext(ctx).Raw(
		`SELECT id, email, created_at FROM email_subscribers ORDER BY created_at ASC`,
	).Scan(&subscribers).Error
	if err != nil {
		return nil, err
	}
	return subscribers, nil
}

func (r *repo) FindTemplate(ctx context.Context, tx *gorm.DB, id int) (*notifydomain.Template, error) {
	var template notifydomain.Template
	err := tx.WithContext(ctx).Raw(
		`SELECT id, name, subject, headline, body, cta_url, cta_label
		 FROM notification_templates
		 WHERE id = ?`,
		id,
	).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notifydomain.ErrTemplateNotFound
		}
		return nil, err
	}
	return &template, nil
}

func (r *repo) AddSubscriber(ctx context.Context, tx *gorm.DB, sub *notifydomain.Subscriber) (bool, error) {
	res := tx.WithContext(ctx).Exec(
		`INSERT INTO email_subscribers (id, email, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (email) DO NOTHING`,
		sub.ID,
		sub.Email,
		sub.CreatedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
