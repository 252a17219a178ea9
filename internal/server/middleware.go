package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authdomain "github.com/cohortly/cohortly/internal/auth/domain"
	obscontext "github.com/cohortly/cohortly/internal/observability/context"
)

const contextUserKey = "auth_user"

// AuthRequired verifies the bearer token against the hosted auth backend and
// stores the resolved user on the request. Tokens are opaque; any failure to
// verify is indistinguishable from a missing token.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			AbortWithError(c, authdomain.ErrUnauthorized)
			return
		}

		user, err := s.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Request = c.Request.WithContext(obscontext.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func currentUser(c *gin.Context) *authdomain.User {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*authdomain.User)
	return user
}

// allowCheckout consults the per-user rate limiter. A redis failure degrades
// to allow; throttling is protection, not a correctness gate.
func (s *Server) allowCheckout(c *gin.Context, userID string) bool {
	if !s.checkoutLimiter.Enabled() {
		return true
	}
	ok, err := s.checkoutLimiter.Allow(c.Request.Context(), userID)
	if err != nil {
		s.log.Warn("checkout rate limiter unavailable", zap.Error(err))
		return true
	}
	return ok
}
