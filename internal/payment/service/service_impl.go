package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	checkoutdomain "github.com/cohortly/cohortly/internal/checkout/domain"
	enrollmentdomain "github.com/cohortly/cohortly/internal/enrollment/domain"
	"github.com/cohortly/cohortly/internal/observability/metrics"
	paymentdomain "github.com/cohortly/cohortly/internal/payment/domain"
	subscriptiondomain "github.com/cohortly/cohortly/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Log           *zap.Logger
	Adapter       paymentdomain.Adapter
	Fetcher       paymentdomain.SubscriptionFetcher
	Enrollments   enrollmentdomain.Service
	Subscriptions subscriptiondomain.Service
	Metrics       *metrics.Metrics
}

type reconciler struct {
	log           *zap.Logger
	adapter       paymentdomain.Adapter
	fetcher       paymentdomain.SubscriptionFetcher
	enrollments   enrollmentdomain.Service
	subscriptions subscriptiondomain.Service
	metrics       *metrics.Metrics
}

func New(p Params) paymentdomain.Reconciler {
	return &reconciler{
		log:           p.Log.Named("payment.reconciler"),
		adapter:       p.Adapter,
		fetcher:       p.Fetcher,
		enrollments:   p.Enrollments,
		subscriptions: p.Subscriptions,
		metrics:       p.Metrics,
	}
}

// HandleEvent verifies the raw delivery, decodes it, and applies the state
// transition. Redelivery is always safe: enrollment inserts are keyed by
// checkout session id and subscription writes are upserts.
func (r *reconciler) HandleEvent(ctx context.Context, payload []byte, headers http.Header) error {
	if err := r.adapter.Verify(ctx, payload, headers); err != nil {
		r.metrics.RecordWebhookEvent(ctx, "unknown", "signature_invalid")
		return err
	}

	event, err := r.adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			r.log.Debug("ignoring unhandled provider event")
			return nil
		}
		r.metrics.RecordWebhookEvent(ctx, "unknown", "parse_failed")
		return err
	}

	switch event.Type {
	case paymentdomain.EventTypeCheckoutCompleted:
		err = r.applyCheckoutCompleted(ctx, event)
	case paymentdomain.EventTypeSubscriptionUpsert, paymentdomain.EventTypeInvoicePaid:
		err = r.applySubscriptionUpsert(ctx, event)
	case paymentdomain.EventTypeSubscriptionDeleted:
		err = r.applySubscriptionDeleted(ctx, event)
	default:
		r.log.Debug("no transition for event", zap.String("type", event.Type))
		return nil
	}

	outcome := "applied"
	if err != nil {
		outcome = "failed"
	}
	r.metrics.RecordWebhookEvent(ctx, event.Type, outcome)
	return err
}

func (r *reconciler) applyCheckoutCompleted(ctx context.Context, event *paymentdomain.Event) error {
	metadata, err := checkoutdomain.ParseMetadata(event.Metadata)
	if err != nil {
		r.log.Warn("checkout event missing required metadata",
			zap.String("session_id", event.CheckoutSessionID))
		return err
	}

	if metadata.PaymentType == checkoutdomain.PaymentSubscription {
		return r.upsertFromProvider(ctx, event.SubscriptionID, metadata.UserID)
	}

	courseIDs, err := json.Marshal(metadata.CourseIDs())
	if err != nil {
		return err
	}
	variantIDs, err := json.Marshal(metadata.VariantIDs())
	if err != nil {
		return err
	}

	created, err := r.enrollments.Record(ctx, &enrollmentdomain.Enrollment{
		UserID:            metadata.UserID,
		CheckoutSessionID: event.CheckoutSessionID,
		CourseIDs:         datatypes.JSON(courseIDs),
		VariantIDs:        datatypes.JSON(variantIDs),
		TotalPricePaid:    event.AmountTotal,
		Currency:          event.Currency,
	})
	if err != nil {
		return fmt.Errorf("record enrollment: %w", err)
	}
	if created {
		r.metrics.RecordEnrollment(ctx)
		r.log.Info("enrollment recorded",
			zap.String("user_id", metadata.UserID),
			zap.String("session_id", event.CheckoutSessionID),
			zap.Int64("amount", event.AmountTotal))
	}
	return nil
}

func (r *reconciler) applySubscriptionUpsert(ctx context.Context, event *paymentdomain.Event) error {
	return r.upsertFromProvider(ctx, event.SubscriptionID, event.Metadata["user_id"])
}

func (r *reconciler) applySubscriptionDeleted(ctx context.Context, event *paymentdomain.Event) error {
	userID := event.Metadata["user_id"]
	if userID == "" {
		r.log.Warn("subscription deletion event without user mapping",
			zap.String("subscription_id", event.SubscriptionID))
		return paymentdomain.ErrInvalidPayload
	}
	return r.subscriptions.DeleteByUser(ctx, userID)
}

// upsertFromProvider refreshes the persisted subscription from the
// provider's authoritative object. The event only carries ids; the full
// object holds status and period bounds.
func (r *reconciler) upsertFromProvider(ctx context.Context, subscriptionID, fallbackUserID string) error {
	sub, err := r.fetcher.FetchSubscription(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("fetch subscription: %w", err)
	}

	userID := sub.Metadata["user_id"]
	if userID == "" {
		userID = fallbackUserID
	}
	if userID == "" {
		r.log.Warn("subscription without user mapping",
			zap.String("subscription_id", sub.ID))
		return paymentdomain.ErrInvalidPayload
	}

	meta := make(datatypes.JSONMap, len(sub.Metadata))
	for key, value := range sub.Metadata {
		meta[key] = value
	}

	return r.subscriptions.Upsert(ctx, &subscriptiondomain.Subscription{
		UserID:               userID,
		StripeCustomerID:     sub.CustomerID,
		StripeSubscriptionID: sub.ID,
		Status:               subscriptiondomain.Status(sub.Status),
		CurrentPeriodStart:   sub.CurrentPeriodStart,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
		Metadata:             meta,
	})
}
