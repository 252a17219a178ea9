package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListCourses(c *gin.Context) {
	courses, err := s.catalogSvc.ListCourses(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": courses})
}

func (s *Server) ListCohorts(c *gin.Context) {
	cohorts, err := s.catalogSvc.ListCohorts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cohorts})
}

// GetCourse returns one course with its variants priced for the phase
// governing each variant. Unavailable variants are included with no amount so
// the client can render them as locked.
func (s *Server) GetCourse(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	course, variants, err := s.catalogSvc.CourseBySlug(c.Request.Context(), slug)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": course, "variants": variants})
}

func (s *Server) GetCohort(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cohort, variants, err := s.catalogSvc.CohortBySlug(c.Request.Context(), slug)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cohort, "variants": variants})
}
