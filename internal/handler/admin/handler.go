package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/howdoihelp/howdoihelp/internal/referral"
)

const sessionMaxAge = 7 * 24 * time.Hour

// LoginRequest is the JSON body of POST /admin/login.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// StatsSource reports referral click statistics.
type StatsSource interface {
	Stats() []referral.SlugStats
}

// Handler serves admin login and admin API endpoints.
type Handler struct {
	password     string
	sessionToken string
	stats        StatsSource
}

// NewHandler creates an admin handler. Login always fails when password or
// sessionToken is empty.
func NewHandler(password, sessionToken string, stats StatsSource) *Handler {
	return &Handler{password: password, sessionToken: sessionToken, stats: stats}
}

const loginPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Admin login</title></head>
<body>
<form id="login">
<input type="password" name="password" autocomplete="current-password" required>
<button type="submit">Sign in</button>
</form>
<script>
document.getElementById("login").addEventListener("submit", async (e) => {
  e.preventDefault();
  const res = await fetch("/admin/login", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({password: e.target.password.value}),
  });
  if (res.ok) { window.location = "/admin/"; } else { alert("Invalid password"); }
});
</script>
</body>
</html>
`

// LoginPage handles GET /admin/login
func (h *Handler) LoginPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(loginPage))
}

// Dashboard handles GET /admin/ behind the gate.
func (h *Handler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"endpoints": []string{"/admin/api/referrals"},
	})
}

// Login handles POST /admin/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	if h.password == "" || h.sessionToken == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		slog.Warn("admin login rejected", "client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	slog.Info("admin login", "client_ip", c.ClientIP())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, h.sessionToken, int(sessionMaxAge.Seconds()), "/admin", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Logout handles POST /admin/logout
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/admin", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Referrals handles GET /admin/api/referrals
func (h *Handler) Referrals(c *gin.Context) {
	stats := h.stats.Stats()
	if stats == nil {
		stats = []referral.SlugStats{}
	}
	c.JSON(http.StatusOK, gin.H{"referrals": stats})
}
