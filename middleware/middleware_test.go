package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LovationAdmin/quote-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ok, _ := rl.allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = rl.allow("1.1.1.1")
	assert.True(t, ok)
	ok, retry := rl.allow("1.1.1.1")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	ok, _ = rl.allow("2.2.2.2")
	assert.True(t, ok, "limits are per client")

	now = now.Add(61 * time.Second)
	ok, _ = rl.allow("1.1.1.1")
	assert.True(t, ok, "window resets")

	rl.cleanup()
	assert.Len(t, rl.requests, 1)
}

func TestRateLimiterMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := gin.New()
	router.Use(RateLimiter(ctx, 1, time.Minute))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := serve(t, router, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(t, router, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func sessionRouter(secret string) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/me", SessionAuth(secret), func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionID(c))
	})
	return router
}

func TestSessionAuth(t *testing.T) {
	router := sessionRouter("s3cret")
	token, err := utils.GenerateSessionToken("s3cret", "session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(t, router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "session-1", w.Body.String())

	w = serve(t, router, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code, "query token for WebSocket upgrades")

	w = serve(t, router, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "Missing session token"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = serve(t, router, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "Invalid session token"}`, w.Body.String())
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("abc"))
}

func adminRouter(hash, totpSecret string) *gin.Engine {
	router := gin.New()
	router.DELETE("/admin/cache", AdminAuth(hash, totpSecret), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func adminRequest(token, code string) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/admin/cache", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if code != "" {
		req.Header.Set("X-TOTP-Code", code)
	}
	return req
}

func TestAdminAuth(t *testing.T) {
	hash, err := utils.HashAdminToken("operator-token")
	require.NoError(t, err)

	w := serve(t, adminRouter("", ""), adminRequest("operator-token", ""))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	router := adminRouter(hash, "")
	assert.Equal(t, http.StatusNoContent, serve(t, router, adminRequest("operator-token", "")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, router, adminRequest("wrong", "")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, router, adminRequest("", "")).Code)
}

func TestAdminAuth_TOTP(t *testing.T) {
	hash, err := utils.HashAdminToken("operator-token")
	require.NoError(t, err)
	secret, _, err := utils.GenerateTOTPSecret("ops@example.com")
	require.NoError(t, err)
	router := adminRouter(hash, secret)

	w := serve(t, router, adminRequest("operator-token", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "2FA code required", "requires_2fa": true}`, w.Body.String())

	w = serve(t, router, adminRequest("operator-token", "abcdef"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "Invalid 2FA code"}`, w.Body.String())

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, serve(t, router, adminRequest("operator-token", code)).Code)
}
