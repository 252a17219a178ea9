package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authdomain "github.com/cohortly/cohortly/internal/auth/domain"
	checkoutdomain "github.com/cohortly/cohortly/internal/checkout/domain"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
)

type fakeVerifier struct {
	user  *authdomain.User
	calls int
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*authdomain.User, error) {
	f.calls++
	_ = ctx
	_ = token
	if f.user == nil {
		return nil, authdomain.ErrUnauthorized
	}
	return f.user, nil
}

type fakeCheckoutService struct {
	result *checkoutdomain.Result
	err    error
	calls  int
}

func (f *fakeCheckoutService) CreateCheckoutSession(ctx context.Context, userID, userEmail string, req checkoutdomain.CheckoutRequest) (*checkoutdomain.Result, error) {
	f.calls++
	_ = ctx
	_ = userID
	_ = userEmail
	_ = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newCheckoutRouter(srv *Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/checkout-sessions", srv.AuthRequired(), srv.CreateCheckoutSession)
	return router
}

func TestCreateCheckoutSessionContract(t *testing.T) {
	checkoutSvc := &fakeCheckoutService{
		result: &checkoutdomain.Result{
			SessionURL: "https://checkout.stripe.com/c/pay/cs_test_1",
			SessionID:  "cs_test_1",
			Phase:      phasedomain.PhaseOne,
		},
	}
	srv := &Server{
		log:         zap.NewNop(),
		verifier:    &fakeVerifier{user: &authdomain.User{ID: "u1", Email: "u1@example.com"}},
		checkoutSvc: checkoutSvc,
	}
	router := newCheckoutRouter(srv)

	body := `{"paymentType":"one_time","cartItems":[{"type":"course","variantId":"1","price":80000}],"currency":"eur","totalPrice":80000}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout-sessions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var got struct {
		Success    bool   `json:"success"`
		SessionURL string `json:"sessionUrl"`
		SessionID  string `json:"sessionId"`
		Phase      string `json:"phase"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !got.Success {
		t.Fatal("expected success true")
	}
	if got.SessionURL != "https://checkout.stripe.com/c/pay/cs_test_1" {
		t.Fatalf("unexpected sessionUrl %q", got.SessionURL)
	}
	if got.SessionID != "cs_test_1" {
		t.Fatalf("expected sessionId to carry the id, got %q", got.SessionID)
	}
	if got.Phase != "phase_1" {
		t.Fatalf("unexpected phase %q", got.Phase)
	}
}

func TestCreateCheckoutSessionRequiresBearer(t *testing.T) {
	checkoutSvc := &fakeCheckoutService{}
	srv := &Server{
		log:         zap.NewNop(),
		verifier:    &fakeVerifier{},
		checkoutSvc: checkoutSvc,
	}
	router := newCheckoutRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout-sessions", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
	if checkoutSvc.calls != 0 {
		t.Fatal("expected checkout service not to be called without credentials")
	}

	var got errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Success || got.Error != "unauthorized" {
		t.Fatalf("unexpected error body: %+v", got)
	}
}

func TestCreateCheckoutSessionClosedPhase(t *testing.T) {
	srv := &Server{
		log:         zap.NewNop(),
		verifier:    &fakeVerifier{user: &authdomain.User{ID: "u1", Email: "u1@example.com"}},
		checkoutSvc: &fakeCheckoutService{err: checkoutdomain.ErrEnrollmentClosed},
	}
	router := newCheckoutRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout-sessions", bytes.NewBufferString(`{"paymentType":"one_time","cartItems":[{"type":"course","variantId":"1"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}

	var got errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Success || got.Error != "enrollment_closed" {
		t.Fatalf("unexpected error body: %+v", got)
	}
}

func TestCreateCheckoutSessionProviderFailure(t *testing.T) {
	srv := &Server{
		log:         zap.NewNop(),
		verifier:    &fakeVerifier{user: &authdomain.User{ID: "u1", Email: "u1@example.com"}},
		checkoutSvc: &fakeCheckoutService{err: errors.New("stripe: connection reset")},
	}
	router := newCheckoutRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout-sessions", bytes.NewBufferString(`{"paymentType":"one_time","cartItems":[{"type":"course","variantId":"1"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}
