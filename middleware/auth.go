package middleware

import (
	"net/http"
	"strings"

	"github.com/LovationAdmin/quote-api/utils"

	"github.com/gin-gonic/gin"
)

const sessionIDKey = "session_id"

// SessionAuth requires a visitor session bearer token. The WebSocket route
// may pass it as ?token= since browsers cannot set headers on upgrades.
func SessionAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing session token"})
			return
		}

		sessionID, err := utils.ParseSessionToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session token"})
			return
		}

		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

// GetSessionID returns the session authenticated by SessionAuth.
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// AdminAuth protects operator routes with a bcrypt-hashed bearer token and,
// when a TOTP secret is configured, an X-TOTP-Code second factor.
func AdminAuth(tokenHash, totpSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenHash == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Admin access is not configured"})
			return
		}

		if !utils.CheckAdminToken(tokenHash, bearerToken(c.GetHeader("Authorization"))) {
			utils.SafeWarn("[Admin] rejected token from %s", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin token"})
			return
		}

		if totpSecret != "" {
			code := strings.TrimSpace(c.GetHeader("X-TOTP-Code"))
			if code == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "2FA code required", "requires_2fa": true})
				return
			}
			if !utils.VerifyTOTP(totpSecret, code) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
				return
			}
		}

		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
