package referral

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/howdoihelp/howdoihelp/internal/referral"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

const recordTimeout = 2 * time.Second

// reserved are top-level path segments owned by other routes.
var reserved = map[string]bool{
	"admin":   true,
	"api":     true,
	"health":  true,
	"ready":   true,
	"metrics": true,
}

// Options configures the referral handler.
type Options struct {
	// CookieMaxAge is how long the client keeps the slug.
	CookieMaxAge time.Duration
	// Redirect is where visitors are sent after the slug is stored.
	Redirect string
	Clock    clockwork.Clock

	// Optional counters.
	Clicks       prometheus.Counter
	RecordErrors prometheus.Counter
}

// Handler turns /<slug> visits into a stored referral and a redirect.
type Handler struct {
	recorder referral.Recorder
	opts     Options
}

// NewHandler creates a referral handler.
func NewHandler(recorder referral.Recorder, opts Options) *Handler {
	if opts.Redirect == "" {
		opts.Redirect = "/"
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Handler{recorder: recorder, opts: opts}
}

// CatchAll is installed as the router's NoRoute handler. Single-segment GET
// or HEAD paths that look like slugs are treated as referral links; anything
// else is a 404.
func (h *Handler) CatchAll(c *gin.Context) {
	slug, ok := h.slugFromRequest(c.Request)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	click := referral.Click{
		ID:        uuid.NewString(),
		Slug:      slug,
		At:        h.opts.Clock.Now().UTC(),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), recordTimeout)
	defer cancel()
	if err := h.recorder.Record(ctx, click); err != nil {
		inc(h.opts.RecordErrors)
		slog.Warn("referral click not recorded", "slug", slug, "error", err)
	}
	inc(h.opts.Clicks)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(referral.CookieName, slug, int(h.opts.CookieMaxAge.Seconds()), "/", "", c.Request.TLS != nil, false)
	c.Redirect(http.StatusFound, h.opts.Redirect)
}

func (h *Handler) slugFromRequest(r *http.Request) (string, bool) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return "", false
	}
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if !referral.ValidSlug(path) || reserved[strings.ToLower(path)] {
		return "", false
	}
	return path, true
}

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}
