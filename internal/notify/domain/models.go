// Package domain holds the broadcast audience and template records used by
// phase announcements.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrTemplateNotFound = errors.New("template_not_found")

// Subscriber is one launch-list recipient.
type Subscriber struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Subscriber) TableName() string { return "email_subscribers" }

// Template is the content of one announcement. IDs are small integers
// referenced from phase definitions.
type Template struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:text;not null" json:"name"`
	Subject  string `gorm:"type:text;not null" json:"subject"`
	Headline string `gorm:"type:text;not null" json:"headline"`
	Body     string `gorm:"type:text;not null" json:"body"`
	CTAURL   string `gorm:"column:cta_url;type:text" json:"cta_url"`
	CTALabel string `gorm:"type:text" json:"cta_label"`
}

func (Template) TableName() string { return "notification_templates" }

type Repository interface {
	ListSubscribers(ctx context.Context, tx *gorm.DB) ([]Subscriber, error)
	FindTemplate(ctx context.Context, tx *gorm.DB, id int) (*Template, error)
	AddSubscriber(ctx context.Context, tx *gorm.DB, sub *Subscriber) (bool, error)
}

// BroadcastResult summarizes one fan-out attempt.
type BroadcastResult struct {
	Recipients int
	Failed     int
}

type Broadcaster interface {
	// Broadcast sends the template to every subscriber. Per-recipient
	// failures are logged and counted, never retried here; the attempt
	// as a whole still completes.
	Broadcast(ctx context.Context, templateID int) (BroadcastResult, error)
}
