// Package domain defines the checkout contract: the request shape accepted
// from clients, the session metadata round-tripped through the payment
// provider, and the provider abstraction the builder talks to.
package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
)

var (
	ErrEnrollmentClosed   = errors.New("enrollment_closed")
	ErrInvalidVariant     = errors.New("invalid_variant")
	ErrInvalidPaymentType = errors.New("invalid_payment_type")
	ErrInvalidCart        = errors.New("invalid_cart")
	ErrInvalidPayload     = errors.New("invalid_payload")
	ErrProvider           = errors.New("provider_error")
)

type PaymentType string

const (
	PaymentOneTime      PaymentType = "one_time"
	PaymentSubscription PaymentType = "subscription"
)

func (p PaymentType) Valid() bool {
	return p == PaymentOneTime || p == PaymentSubscription
}

type ItemType string

const (
	ItemCourse       ItemType = "course"
	ItemCohort       ItemType = "cohort"
	ItemSubscription ItemType = "subscription"
)

// CartItem is the client-asserted selection. Prices and names here are
// display hints only; the builder re-derives everything that matters from
// the authoritative catalog.
type CartItem struct {
	Type        ItemType      `json:"type"`
	CourseID    *snowflake.ID `json:"courseId,omitempty"`
	CohortID    *snowflake.ID `json:"cohortId,omitempty"`
	VariantID   *snowflake.ID `json:"variantId,omitempty"`
	Name        string        `json:"name"`
	VariantName string        `json:"variantName,omitempty"`
	Price       int64         `json:"price"`
}

// CheckoutRequest is the payload of a checkout attempt. Transient: it is
// translated into provider session parameters and never persisted.
type CheckoutRequest struct {
	PaymentType PaymentType `json:"paymentType"`
	CartItems   []CartItem  `json:"cartItems"`
	Currency    string      `json:"currency"`
	TotalPrice  int64       `json:"totalPrice"`
}

// Result is returned to the client after a provider session was created.
type Result struct {
	SessionURL string           `json:"sessionUrl"`
	SessionID  string           `json:"sessionId"`
	Phase      phasedomain.Name `json:"phase"`
}

// LineItem is one provider-priced entry built server-side from the catalog.
type LineItem struct {
	Name        string
	Description string
	Amount      int64
	Currency    string
	Quantity    int64
}

// SessionInput carries everything the provider needs to host the checkout.
// Exactly one of LineItems or SubscriptionPriceID is set, depending on mode.
type SessionInput struct {
	Mode                PaymentType
	LineItems           []LineItem
	SubscriptionPriceID string
	CustomerEmail       string
	ClientReferenceID   string
	SuccessURL          string
	CancelURL           string
	Metadata            map[string]string
}

// Session is the provider's hosted checkout instance.
type Session struct {
	ID  string
	URL string
}

// Provider creates hosted checkout sessions.
type Provider interface {
	CreateSession(ctx context.Context, input SessionInput) (*Session, error)
}

// Service validates a cart against the server-resolved phase and hands the
// purchase off to the provider.
type Service interface {
	CreateCheckoutSession(ctx context.Context, userID, userEmail string, req CheckoutRequest) (*Result, error)
}

// Metadata is embedded in the provider session at creation time and read
// back by the webhook reconciler. Because it is written server-side it is
// the trusted record of what was purchased; the reconciler never re-reads
// mutable cart state.
type Metadata struct {
	UserID      string
	UserEmail   string
	PaymentType PaymentType
	Phase       phasedomain.Name
	Currency    string
	CartItems   []CartItem
	CreatedAt   time.Time
}

const (
	metaUserID      = "user_id"
	metaUserEmail   = "user_email"
	metaPaymentType = "payment_type"
	metaPhase       = "phase"
	metaCurrency    = "currency"
	metaCartItems   = "cart_items"
	metaCreatedAt   = "created_at"
)

// Encode flattens the metadata into the provider's string map.
func (m Metadata) Encode() (map[string]string, error) {
	items, err := json.Marshal(m.CartItems)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		metaUserID:      m.UserID,
		metaUserEmail:   m.UserEmail,
		metaPaymentType: string(m.PaymentType),
		metaPhase:       string(m.Phase),
		metaCurrency:    m.Currency,
		metaCartItems:   string(items),
		metaCreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// ParseMetadata reconstructs session metadata from a provider event. UserID,
// UserEmail and PaymentType are required; missing values are a hard reject.
func ParseMetadata(raw map[string]string) (*Metadata, error) {
	m := &Metadata{
		UserID:      raw[metaUserID],
		UserEmail:   raw[metaUserEmail],
		PaymentType: PaymentType(raw[metaPaymentType]),
		Phase:       phasedomain.Name(raw[metaPhase]),
		Currency:    raw[metaCurrency],
	}
	if m.UserID == "" || m.UserEmail == "" || !m.PaymentType.Valid() {
		return nil, ErrInvalidPayload
	}
	if items := raw[metaCartItems]; items != "" {
		if err := json.Unmarshal([]byte(items), &m.CartItems); err != nil {
			return nil, ErrInvalidPayload
		}
	}
	if ts := raw[metaCreatedAt]; ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			m.CreatedAt = t
		}
	}
	return m, nil
}

// CourseIDs collects the course/cohort parent ids from the cart, in order.
func (m Metadata) CourseIDs() []snowflake.ID {
	var ids []snowflake.ID
	for _, item := range m.CartItems {
		switch {
		case item.CourseID != nil:
			ids = append(ids, *item.CourseID)
		case item.CohortID != nil:
			ids = append(ids, *item.CohortID)
		}
	}
	return ids
}

// VariantIDs collects the variant ids from the cart, in order.
func (m Metadata) VariantIDs() []snowflake.ID {
	var ids []snowflake.ID
	for _, item := range m.CartItems {
		if item.VariantID != nil {
			ids = append(ids, *item.VariantID)
		}
	}
	return ids
}
