// Package domain models the asynchronous payment-provider events the
// reconciler consumes, independent of any one provider's wire format.
package domain

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidEvent     = errors.New("invalid_event")
	ErrEventIgnored     = errors.New("event_ignored")
	ErrInvalidConfig    = errors.New("payment_config_invalid")
)

const (
	EventTypeCheckoutCompleted   = "checkout_completed"
	EventTypeSubscriptionUpsert  = "subscription_upsert"
	EventTypeSubscriptionDeleted = "subscription_deleted"
	EventTypeInvoicePaid         = "invoice_paid"
)

// Event is a provider webhook normalized for reconciliation. Exactly which
// fields are populated depends on Type; Metadata carries the session
// metadata written at checkout-creation time.
type Event struct {
	Provider        string
	ProviderEventID string
	Type            string

	CheckoutSessionID string
	CustomerID        string
	SubscriptionID    string
	AmountTotal       int64
	Currency          string
	Metadata          map[string]string
	OccurredAt        time.Time
	RawPayload        []byte
}

// Adapter authenticates and decodes a provider's raw webhook delivery.
// Verify must run against the raw bytes before any parsing.
type Adapter interface {
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*Event, error)
}

// ProviderSubscription is the authoritative subscription object fetched back
// from the provider when a lifecycle event carries only an id.
type ProviderSubscription struct {
	ID                 string
	CustomerID         string
	Status             string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	Metadata           map[string]string
}

// SubscriptionFetcher retrieves the full subscription object from the
// provider API.
type SubscriptionFetcher interface {
	FetchSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)
}

// Reconciler applies verified provider events to persisted purchase state.
type Reconciler interface {
	HandleEvent(ctx context.Context, payload []byte, headers http.Header) error
}
