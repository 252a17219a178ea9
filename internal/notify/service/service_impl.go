package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/cohortly/cohortly/internal/clock"
	"github.com/cohortly/cohortly/internal/config"
	notifydomain "github.com/cohortly/cohortly/internal/notify/domain"
	"github.com/cohortly/cohortly/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Node   *snowflake.Node
	Repo   notifydomain.Repository
	Email  email.Provider
	Holder *config.BroadcastConfigHolder
	Clock  clock.Clock
}

type broadcaster struct {
	db     *gorm.DB
	log    *zap.Logger
	node   *snowflake.Node
	repo   notifydomain.Repository
	email  email.Provider
	holder *config.BroadcastConfigHolder
	clock  clock.Clock
}

func New(p Params) notifydomain.Broadcaster {
	return &broadcaster{
		db:     p.DB,
		log:    p.Log.Named("notify.broadcaster"),
		node:   p.Node,
		repo:   p.Repo,
		email:  p.Email,
		holder: p.Holder,
		clock:  p.Clock,
	}
}

func (b *broadcaster) Broadcast(ctx context.Context, templateID int) (notifydomain.BroadcastResult, error) {
	template, err := b.repo.FindTemplate(ctx, b.db, templateID)
	if err != nil {
		return notifydomain.BroadcastResult{}, err
	}
	subscribers, err := b.repo.ListSubscribers(ctx, b.db)
	if err != nil {
		return notifydomain.BroadcastResult{}, err
	}

	cfg := b.holder.Current()
	data := map[string]interface{}{
		"subject":   template.Subject,
		"headline":  template.Headline,
		"body":      template.Body,
		"cta_url":   template.CTAURL,
		"cta_label": template.CTALabel,
	}

	result := notifydomain.BroadcastResult{Recipients: len(subscribers)}
	for start := 0; start < len(subscribers); start += cfg.RecipientBatch {
		end := start + cfg.RecipientBatch
		if end > len(subscribers) {
			end = len(subscribers)
		}
		for _, subscriber := range subscribers[start:end] {
			sendCtx, cancel := context.WithTimeout(ctx, cfg.SendTimeout)
			err := b.email.SendTemplate(sendCtx, []string{subscriber.Email}, template.Name, data)
			cancel()
			if err != nil {
				// Failed recipients are logged and skipped; the
				// broadcast as a whole still counts as attempted.
				result.Failed++
				b.log.Warn("broadcast send failed",
					zap.String("email", subscriber.Email),
					zap.Int("template_id", templateID),
					zap.Error(err))
			}
		}
	}

	b.log.Info("broadcast completed",
		zap.Int("template_id", templateID),
		zap.Int("recipients", result.Recipients),
		zap.Int("failed", result.Failed))
	return result, nil
}
