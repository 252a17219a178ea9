package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListPhases returns the global phase schedule ordered by start time, the
// input for client-side countdowns. Clients may resolve a display phase from
// it but the server re-resolves on every purchase path.
func (s *Server) ListPhases(c *gin.Context) {
	phases, err := s.phases.ListGlobal(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": phases})
}

// ActivePhase returns the server-resolved active phase. Zero configured
// phases is an error here, never a silent default.
func (s *Server) ActivePhase(c *gin.Context) {
	name, err := s.phases.Active(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"phase":           name,
		"enrollment_open": name.EnrollmentOpen(),
	})
}
