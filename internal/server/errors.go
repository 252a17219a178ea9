package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authdomain "github.com/cohortly/cohortly/internal/auth/domain"
	catalogdomain "github.com/cohortly/cohortly/internal/catalog/domain"
	checkoutdomain "github.com/cohortly/cohortly/internal/checkout/domain"
	paymentdomain "github.com/cohortly/cohortly/internal/payment/domain"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	subscriptiondomain "github.com/cohortly/cohortly/internal/subscription/domain"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

// errorResponse is the single error contract for every endpoint: one shape,
// one field naming, regardless of which layer produced the failure.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, resp := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, resp)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorResponse) {
	code, message := classifyError(err)
	return statusFor(code), errorResponse{Success: false, Error: code, Message: message}
}

// classifyErrorForLog feeds the request logger; it reuses the response
// taxonomy so log fields and client-visible codes never diverge.
func classifyErrorForLog(err error) (string, string) {
	code, _ := classifyError(err)
	switch statusFor(code) {
	case http.StatusInternalServerError, http.StatusBadGateway:
		return "internal", code
	default:
		return "client", code
	}
}

func classifyError(err error) (code, message string) {
	switch {
	case err == nil:
		return "internal_error", "internal server error"

	case errors.Is(err, authdomain.ErrUnauthorized):
		return "unauthorized", "missing or invalid credentials"

	case errors.Is(err, ErrRateLimited):
		return "rate_limited", "too many checkout attempts, slow down"

	case errors.Is(err, checkoutdomain.ErrEnrollmentClosed):
		return "enrollment_closed", "enrollment is not open in the current phase"
	case errors.Is(err, checkoutdomain.ErrInvalidVariant):
		return "invalid_variant", "referenced catalog item not found or inactive"
	case errors.Is(err, checkoutdomain.ErrInvalidPaymentType):
		return "invalid_payment_type", "payment type must be one_time or subscription"
	case errors.Is(err, checkoutdomain.ErrInvalidCart):
		return "invalid_cart", "cart contents are not valid for this payment type"
	case errors.Is(err, checkoutdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidEvent),
		errors.Is(err, ErrInvalidRequest):
		return "invalid_payload", "malformed or missing required fields"

	case errors.Is(err, paymentdomain.ErrInvalidSignature):
		return "signature_invalid", "webhook signature verification failed"

	case errors.Is(err, catalogdomain.ErrCourseNotFound),
		errors.Is(err, catalogdomain.ErrCohortNotFound),
		errors.Is(err, catalogdomain.ErrVariantNotFound),
		errors.Is(err, subscriptiondomain.ErrSubscriptionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return "not_found", "not found"

	case errors.Is(err, phasedomain.ErrNoPhasesConfigured),
		errors.Is(err, phasedomain.ErrNoActivePhase):
		// Configuration failure, never defaulted to an open phase. The raw
		// error goes in the message so operators see it immediately.
		return "no_active_phase", err.Error()

	case errors.Is(err, checkoutdomain.ErrProvider):
		return "provider_error", err.Error()

	default:
		return "persistence_error", err.Error()
	}
}

func statusFor(code string) int {
	switch code {
	case "unauthorized":
		return http.StatusUnauthorized
	case "enrollment_closed":
		return http.StatusForbidden
	case "not_found":
		return http.StatusNotFound
	case "rate_limited":
		return http.StatusTooManyRequests
	case "invalid_variant", "invalid_payment_type", "invalid_cart", "invalid_payload", "signature_invalid":
		return http.StatusBadRequest
	case "provider_error":
		return http.StatusBadGateway
	default:
		// persistence_error, no_active_phase: non-2xx so webhook deliveries
		// are retried by the provider.
		return http.StatusInternalServerError
	}
}
