package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/cohortly/cohortly/internal/catalog/domain"
	checkoutdomain "github.com/cohortly/cohortly/internal/checkout/domain"
	"github.com/cohortly/cohortly/internal/clock"
	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/observability/metrics"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPhaseService struct {
	phase phasedomain.Name
	err   error
}

func (s *stubPhaseService) ListGlobal(ctx context.Context) ([]phasedomain.Definition, error) {
	return nil, nil
}

func (s *stubPhaseService) Active(ctx context.Context) (phasedomain.Name, error) {
	return s.phase, s.err
}

func (s *stubPhaseService) Governing(ctx context.Context, kind phasedomain.ParentKind, parentID snowflake.ID) (phasedomain.Name, error) {
	return s.phase, s.err
}

type stubCatalogService struct {
	variants map[snowflake.ID]*catalogdomain.Variant
}

func (s *stubCatalogService) ListCourses(ctx context.Context) ([]catalogdomain.Course, error) {
	return nil, nil
}

func (s *stubCatalogService) ListCohorts(ctx context.Context) ([]catalogdomain.Cohort, error) {
	return nil, nil
}

func (s *stubCatalogService) CourseBySlug(ctx context.Context, slug string) (*catalogdomain.Course, []catalogdomain.PricedVariant, error) {
	return nil, nil, catalogdomain.ErrCourseNotFound
}

func (s *stubCatalogService) CohortBySlug(ctx context.Context, slug string) (*catalogdomain.Cohort, []catalogdomain.PricedVariant, error) {
	return nil, nil, catalogdomain.ErrCohortNotFound
}

func (s *stubCatalogService) Variant(ctx context.Context, id snowflake.ID) (*catalogdomain.Variant, error) {
	if v, ok := s.variants[id]; ok {
		return v, nil
	}
	return nil, catalogdomain.ErrVariantNotFound
}

type stubProvider struct {
	lastInput *checkoutdomain.SessionInput
	session   *checkoutdomain.Session
	err       error
}

func (s *stubProvider) CreateSession(ctx context.Context, input checkoutdomain.SessionInput) (*checkoutdomain.Session, error) {
	s.lastInput = &input
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func newTestService(phase phasedomain.Name, variants map[snowflake.ID]*catalogdomain.Variant, provider *stubProvider) checkoutdomain.Service {
	mp, _ := metrics.NewProvider(nil, metrics.Config{Enabled: false}, nil)
	m, _ := metrics.New(metrics.Config{}, mp)
	return New(Params{
		Metrics: m,
		Log: zap.NewNop(),
		Config: &config.Config{
			DefaultCurrency:         "usd",
			CheckoutRedirectBase:    "https://app.example.com",
			StripeSubscriptionPrice: "price_membership",
		},
		Phases:   &stubPhaseService{phase: phase},
		Catalog:  &stubCatalogService{variants: variants},
		Provider: provider,
		Clock:    clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	})
}

func variantID(id int64) *snowflake.ID {
	v := snowflake.ID(id)
	return &v
}

func TestCreateSessionRecomputesPrices(t *testing.T) {
	provider := &stubProvider{session: &checkoutdomain.Session{ID: "cs_1", URL: "https://checkout.stripe.com/cs_1"}}
	svc := newTestService(phasedomain.PhaseOne, map[snowflake.ID]*catalogdomain.Variant{
		10: {ID: 10, Name: "Standard", PricePhaseOne: 80000, PricePhaseTwo: 100000, Status: catalogdomain.StatusActive},
	}, provider)

	result, err := svc.CreateCheckoutSession(context.Background(), "user_1", "u@example.com", checkoutdomain.CheckoutRequest{
		PaymentType: checkoutdomain.PaymentOneTime,
		CartItems: []checkoutdomain.CartItem{{
			Type:      checkoutdomain.ItemCourse,
			CourseID:  variantID(1),
			VariantID: variantID(10),
			Name:      "Go Course",
			// Client-asserted price is a lie; the builder must ignore it.
			Price: 1,
		}},
		Currency: "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", result.SessionID)
	assert.Equal(t, phasedomain.PhaseOne, result.Phase)

	require.Len(t, provider.lastInput.LineItems, 1)
	assert.EqualValues(t, 80000, provider.lastInput.LineItems[0].Amount)
	assert.Equal(t, "usd", provider.lastInput.LineItems[0].Currency)
	assert.Equal(t, "u@example.com", provider.lastInput.CustomerEmail)
	assert.Equal(t, "user_1", provider.lastInput.Metadata["user_id"])
}

func TestCreateSessionRejectsWhenClosed(t *testing.T) {
	for _, phase := range []phasedomain.Name{phasedomain.BeforeLaunch, phasedomain.Closed} {
		provider := &stubProvider{}
		svc := newTestService(phase, nil, provider)

		_, err := svc.CreateCheckoutSession(context.Background(), "user_1", "u@example.com", checkoutdomain.CheckoutRequest{
			PaymentType: checkoutdomain.PaymentOneTime,
			CartItems:   []checkoutdomain.CartItem{{Type: checkoutdomain.ItemCourse, VariantID: variantID(10)}},
		})
		assert.ErrorIs(t, err, checkoutdomain.ErrEnrollmentClosed)
		assert.Nil(t, provider.lastInput, "provider must not be contacted")
	}
}

func TestCreateSessionRejectsOversizedSubscriptionCart(t *testing.T) {
	provider := &stubProvider{}
	svc := newTestService(phasedomain.PhaseOne, nil, provider)

	_, err := svc.CreateCheckoutSession(context.Background(), "user_1", "u@example.com", checkoutdomain.CheckoutRequest{
		PaymentType: checkoutdomain.PaymentSubscription,
		CartItems: []checkoutdomain.CartItem{
			{Type: checkoutdomain.ItemSubscription},
			{Type: checkoutdomain.ItemSubscription},
		},
	})
	assert.ErrorIs(t, err, checkoutdomain.ErrInvalidCart)
	assert.Nil(t, provider.lastInput, "provider must not be contacted")
}

func TestCreateSessionSubscriptionUsesFixedPrice(t *testing.T) {
	provider := &stubProvider{session: &checkoutdomain.Session{ID: "cs_2", URL: "https://checkout.stripe.com/cs_2"}}
	svc := newTestService(phasedomain.PhaseTwo, nil, provider)

	result, err := svc.CreateCheckoutSession(context.Background(), "user_1", "u@example.com", checkoutdomain.CheckoutRequest{
		PaymentType: checkoutdomain.PaymentSubscription,
		CartItems:   []checkoutdomain.CartItem{{Type: checkoutdomain.ItemSubscription, Name: "Membership"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_2", result.SessionID)
	assert.Equal(t, "price_membership", provider.lastInput.SubscriptionPriceID)
	assert.Equal(t, checkoutdomain.PaymentSubscription, provider.lastInput.Mode)
}

func TestCreateSessionRejectsUnknownVariant(t *testing.T) {
	provider := &stubProvider{}
	svc := newTestService(phasedomain.PhaseTwo, map[snowflake.ID]*catalogdomain.Variant{}, provider)

	_, err := svc.CreateCheckoutSession(context.Background(), "user_1", "u@example.com", checkoutdomain.CheckoutRequest{
		PaymentType: checkoutdomain.PaymentOneTime,
		CartItems: []checkoutdomain.CartItem{{
			Type:      checkoutdomain.ItemCourse,
			VariantID: variantID(999),
		}},
	})
	assert.ErrorIs(t, err, checkoutdomain.ErrInvalidVariant)
	assert.Nil(t, provider.lastInput, "no provider session for unknown variants")
}

func TestCreateSessionRejectsInvalidPaymentType(t *testing.T) {
	provider := &stubProvider{}
	svc := newTestService(phasedomain.PhaseOne, nil, provider)

	_, err := svc.CreateCheckoutSession(context.Background(), "user_1", "u@example.com", checkoutdomain.CheckoutRequest{
		PaymentType: "installments",
	})
	assert.ErrorIs(t, err, checkoutdomain.ErrInvalidPaymentType)
}

func TestCreateSessionWrapsProviderErrors(t *testing.T) {
	provider := &stubProvider{err: errors.New("stripe_request_failed")}
	svc := newTestService(phasedomain.PhaseOne, map[snowflake.ID]*catalogdomain.Variant{
		10: {ID: 10, Name: "Standard", PricePhaseOne: 80000, PricePhaseTwo: 100000, Status: catalogdomain.StatusActive},
	}, provider)

	_, err := svc.CreateCheckoutSession(context.Background(), "user_1", "u@example.com", checkoutdomain.CheckoutRequest{
		PaymentType: checkoutdomain.PaymentOneTime,
		CartItems: []checkoutdomain.CartItem{{
			Type:      checkoutdomain.ItemCourse,
			VariantID: variantID(10),
		}},
	})
	assert.ErrorIs(t, err, checkoutdomain.ErrProvider)
}
