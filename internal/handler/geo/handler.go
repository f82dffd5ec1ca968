package geo

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/howdoihelp/howdoihelp/internal/geo"
)

// Resolver locates an address. It never fails.
type Resolver interface {
	ResolveIP(ctx context.Context, ip string) geo.GeoData
}

// Response is the JSON body of GET /api/v1/geo.
type Response struct {
	geo.View
	ShowAdvocacy bool `json:"show_advocacy"`
}

// DenylistResponse is the JSON body of GET /api/v1/geo/denylist.
type DenylistResponse struct {
	Countries []string `json:"countries"`
}

// Handler serves visitor geolocation.
type Handler struct {
	resolver  Resolver
	countries geo.CountrySet
}

// NewHandler creates a geolocation handler. countries is only used for the
// denylist listing; classification happens inside the resolver.
func NewHandler(resolver Resolver, countries geo.CountrySet) *Handler {
	return &Handler{resolver: resolver, countries: countries}
}

// Locate handles GET /api/v1/geo
func (h *Handler) Locate(c *gin.Context) {
	g := h.resolver.ResolveIP(c.Request.Context(), c.ClientIP())

	slog.Debug("visitor located",
		"country_code", g.CountryCode(),
		"is_authoritarian", g.IsAuthoritarian(),
		"resolved", g.Resolved(),
	)

	c.Header("Cache-Control", "private, no-store")
	c.JSON(http.StatusOK, Response{
		View:         g.View(),
		ShowAdvocacy: !g.IsAuthoritarian(),
	})
}

// Denylist handles GET /api/v1/geo/denylist
func (h *Handler) Denylist(c *gin.Context) {
	c.JSON(http.StatusOK, DenylistResponse{Countries: h.countries.Codes()})
}
