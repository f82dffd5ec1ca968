package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Check is a named readiness dependency.
type Check struct {
	Name string
	Fn   func() error
}

// Handler manages health check endpoints
type Handler struct {
	checks []Check
}

// NewHandler creates a new health check handler. Ready fails while any
// check returns an error.
func NewHandler(checks ...Check) *Handler {
	return &Handler{checks: checks}
}

// Health is the liveness probe endpoint
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready is the readiness probe endpoint
// GET /ready
func (h *Handler) Ready(c *gin.Context) {
	failed := gin.H{}
	for _, chk := range h.checks {
		if chk.Fn == nil {
			continue
		}
		if err := chk.Fn(); err != nil {
			failed[chk.Name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"errors": failed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
