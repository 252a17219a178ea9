package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/cohortly/cohortly/internal/payment/domain"
)

// maxWebhookBody caps provider payloads. Stripe events are a few KB; anything
// near this limit is not a legitimate delivery.
const maxWebhookBody = 1 << 20

// HandlePaymentWebhook ingests provider events. The raw body is read before
// any parsing because signature verification covers the exact bytes sent.
// Validation failures answer 400 (terminal, no redelivery wanted);
// persistence or provider failures answer 500 so the provider redelivers.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err = s.reconciler.HandleEvent(c.Request.Context(), payload, c.Request.Header)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
