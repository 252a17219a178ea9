package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authdomain "github.com/cohortly/cohortly/internal/auth/domain"
	checkoutdomain "github.com/cohortly/cohortly/internal/checkout/domain"
)

// CreateCheckoutSession validates the submitted cart against the server-side
// phase and catalog, creates the provider session and returns its redirect
// URL. The client's totalPrice and phase are never trusted.
func (s *Server) CreateCheckoutSession(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, authdomain.ErrUnauthorized)
		return
	}

	if !s.allowCheckout(c, user.ID) {
		AbortWithError(c, ErrRateLimited)
		return
	}

	var req checkoutdomain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.checkoutSvc.CreateCheckoutSession(c.Request.Context(), user.ID, user.Email, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"sessionUrl": result.SessionURL,
		"sessionId":  result.SessionID,
		"phase":      result.Phase,
	})
}
