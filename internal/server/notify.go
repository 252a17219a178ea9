package server

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	notifydomain "github.com/cohortly/cohortly/internal/notify/domain"
)

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe adds an address to the launch announcement list. Re-subscribing
// an existing address is a benign no-op; the response does not reveal whether
// the address was already known.
func (s *Server) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	addr := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(addr); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	sub := &notifydomain.Subscriber{
		ID:        s.genID.Generate(),
		Email:     addr,
		CreatedAt: s.clock.Now(),
	}
	if _, err := s.notifyRepo.AddSubscriber(c.Request.Context(), s.db, sub); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
