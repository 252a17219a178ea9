package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	catalogdomain "github.com/cohortly/cohortly/internal/catalog/domain"
	checkoutdomain "github.com/cohortly/cohortly/internal/checkout/domain"
	"github.com/cohortly/cohortly/internal/clock"
	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/observability/metrics"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	Phases   phasedomain.Service
	Catalog  catalogdomain.Service
	Provider checkoutdomain.Provider
	Clock    clock.Clock
	Metrics  *metrics.Metrics
}

type service struct {
	log      *zap.Logger
	cfg      *config.Config
	phases   phasedomain.Service
	catalog  catalogdomain.Service
	provider checkoutdomain.Provider
	clock    clock.Clock
	metrics  *metrics.Metrics
}

func New(p Params) checkoutdomain.Service {
	return &service{
		log:      p.Log.Named("checkout.service"),
		cfg:      p.Config,
		phases:   p.Phases,
		catalog:  p.Catalog,
		provider: p.Provider,
		clock:    p.Clock,
		metrics:  p.Metrics,
	}
}

// CreateCheckoutSession re-validates the entire cart server-side. The phase
// is re-resolved from persisted definitions and every price is re-derived
// from the catalog; nothing client-asserted survives into the provider call.
func (s *service) CreateCheckoutSession(ctx context.Context, userID, userEmail string, req checkoutdomain.CheckoutRequest) (*checkoutdomain.Result, error) {
	if !req.PaymentType.Valid() {
		return nil, checkoutdomain.ErrInvalidPaymentType
	}

	phase, err := s.phases.Active(ctx)
	if err != nil {
		return nil, err
	}
	if !phase.EnrollmentOpen() {
		return nil, checkoutdomain.ErrEnrollmentClosed
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	input := checkoutdomain.SessionInput{
		Mode:              req.PaymentType,
		CustomerEmail:     userEmail,
		ClientReferenceID: ulid.Make().String(),
		SuccessURL:        s.cfg.CheckoutRedirectBase + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         s.cfg.CheckoutRedirectBase + "/checkout/cancel",
	}

	switch req.PaymentType {
	case checkoutdomain.PaymentSubscription:
		// The cart may carry at most the single subscription item.
		if len(req.CartItems) > 1 {
			return nil, checkoutdomain.ErrInvalidCart
		}
		input.SubscriptionPriceID = s.cfg.StripeSubscriptionPrice
	case checkoutdomain.PaymentOneTime:
		items, err := s.buildLineItems(ctx, phase, currency, req.CartItems)
		if err != nil {
			return nil, err
		}
		input.LineItems = items
	}

	metadata, err := checkoutdomain.Metadata{
		UserID:      userID,
		UserEmail:   userEmail,
		PaymentType: req.PaymentType,
		Phase:       phase,
		Currency:    currency,
		CartItems:   req.CartItems,
		CreatedAt:   s.clock.Now(),
	}.Encode()
	if err != nil {
		return nil, err
	}
	input.Metadata = metadata

	session, err := s.provider.CreateSession(ctx, input)
	if err != nil {
		s.log.Error("provider session creation failed",
			zap.String("user_id", userID),
			zap.String("payment_type", string(req.PaymentType)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", checkoutdomain.ErrProvider, err)
	}

	s.metrics.RecordCheckoutSession(ctx, string(req.PaymentType), string(phase))
	s.log.Info("checkout session created",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID),
		zap.String("phase", string(phase)),
		zap.Int("items", len(req.CartItems)))

	return &checkoutdomain.Result{
		SessionURL: session.URL,
		SessionID:  session.ID,
		Phase:      phase,
	}, nil
}

func (s *service) buildLineItems(ctx context.Context, phase phasedomain.Name, currency string, cartItems []checkoutdomain.CartItem) ([]checkoutdomain.LineItem, error) {
	if len(cartItems) == 0 {
		return nil, checkoutdomain.ErrInvalidCart
	}

	items := make([]checkoutdomain.LineItem, 0, len(cartItems))
	for _, item := range cartItems {
		if item.Type != checkoutdomain.ItemCourse && item.Type != checkoutdomain.ItemCohort {
			return nil, checkoutdomain.ErrInvalidCart
		}
		if item.VariantID == nil {
			return nil, checkoutdomain.ErrInvalidPayload
		}

		variant, err := s.catalog.Variant(ctx, *item.VariantID)
		if err != nil {
			if errors.Is(err, catalogdomain.ErrVariantNotFound) {
				return nil, checkoutdomain.ErrInvalidVariant
			}
			return nil, err
		}

		amount, ok := catalogdomain.Price(phase, *variant)
		if !ok {
			return nil, checkoutdomain.ErrInvalidVariant
		}

		name := item.Name
		if name == "" {
			name = variant.Name
		}
		items = append(items, checkoutdomain.LineItem{
			Name:        name,
			Description: variant.Name,
			Amount:      amount,
			Currency:    currency,
			Quantity:    1,
		})
	}
	return items, nil
}
