package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	authdomain "github.com/cohortly/cohortly/internal/auth/domain"
	subscriptiondomain "github.com/cohortly/cohortly/internal/subscription/domain"
)

func (s *Server) ListMyEnrollments(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, authdomain.ErrUnauthorized)
		return
	}

	enrollments, err := s.enrollments.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollments})
}

// GetMySubscription reports the caller's subscription row. No row is a
// normal state for non-subscribers, answered with data: null rather than 404.
func (s *Server) GetMySubscription(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, authdomain.ErrUnauthorized)
		return
	}

	sub, err := s.subscriptions.ByUser(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, subscriptiondomain.ErrSubscriptionNotFound) {
			c.JSON(http.StatusOK, gin.H{"data": nil})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}
