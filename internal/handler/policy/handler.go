package policy

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/howdoihelp/howdoihelp/internal/policy"
)

// CheckRequest represents the JSON body for a policy check.
type CheckRequest struct {
	IP string `json:"ip" binding:"required"`
}

// CheckResponse represents the JSON response for a policy check.
type CheckResponse struct {
	Country         string `json:"country"`
	CountryCode     string `json:"country_code"`
	IsAuthoritarian bool   `json:"is_authoritarian"`
	ShowAdvocacy    bool   `json:"show_advocacy"`
	Error           string `json:"error"`
}

// Handler serves the offline content policy check.
type Handler struct {
	checker *policy.Checker
}

// NewHandler creates a new policy handler.
func NewHandler(checker *policy.Checker) *Handler {
	return &Handler{checker: checker}
}

// Check handles POST /api/v1/policy/check
func (h *Handler) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, CheckResponse{
			Error: "invalid request: " + err.Error(),
		})
		return
	}

	slog.Debug("policy check request received", "ip", req.IP)

	g, err := h.checker.Check(req.IP)
	switch {
	case errors.Is(err, policy.ErrInvalidIP):
		c.JSON(http.StatusBadRequest, CheckResponse{Error: "invalid IP address"})
		return
	case errors.Is(err, policy.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, CheckResponse{Error: "policy database not configured"})
		return
	case err != nil:
		slog.Error("policy lookup failed", "ip", req.IP, "error", err)
		c.JSON(http.StatusInternalServerError, CheckResponse{Error: "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, CheckResponse{
		Country:         g.Country(),
		CountryCode:     g.CountryCode(),
		IsAuthoritarian: g.IsAuthoritarian(),
		ShowAdvocacy:    !g.IsAuthoritarian(),
	})
}
