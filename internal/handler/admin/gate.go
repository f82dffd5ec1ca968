package admin

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// SessionCookie holds the static admin session value.
const SessionCookie = "admin_session"

// LoginPath is where unauthenticated page requests are redirected.
const LoginPath = "/admin/login"

// Gate lets a request through only when its session cookie equals
// sessionToken. An empty sessionToken locks the admin surface entirely.
// API requests are rejected with 401; page requests are sent to LoginPath.
func Gate(sessionToken string, denied prometheus.Counter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validSession(c, sessionToken) {
			c.Next()
			return
		}

		if denied != nil {
			denied.Inc()
		}
		if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
	}
}

func validSession(c *gin.Context, sessionToken string) bool {
	if sessionToken == "" {
		return false
	}
	value, err := c.Cookie(SessionCookie)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(value), []byte(sessionToken)) == 1
}
