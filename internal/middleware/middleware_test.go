package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkmate/bunkmate-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	claims     *service.Claims
	tokenErr   error
	sessionErr error
}

func (s *stubAuth) ValidateToken(tokenStr string) (*service.Claims, error) {
	if s.tokenErr != nil {
		return nil, s.tokenErr
	}
	if tokenStr != "good" {
		return nil, errors.New("bad token")
	}
	return s.claims, nil
}

func (s *stubAuth) ValidateSession(context.Context, *service.Claims) error {
	return s.sessionErr
}

func newAuthRouter(auth Authenticator) *gin.Engine {
	r := gin.New()
	r.GET("/me", RequireAuth(auth), RequireActiveSession(auth), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c).String()+"|"+GetSessionID(c))
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()
	claims := &service.Claims{UserID: userID.String()}
	claims.ID = "jti-1"
	auth := &stubAuth{claims: claims}
	r := newAuthRouter(auth)

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantBody string
	}{
		{"bearer header", "Bearer good", "", http.StatusOK, userID.String() + "|jti-1"},
		{"query fallback", "", "?token=good", http.StatusOK, userID.String() + "|jti-1"},
		{"missing", "", "", http.StatusUnauthorized, "TOKEN_REQUIRED"},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized, "TOKEN_INVALID"},
		{"wrong scheme", "Basic good", "", http.StatusUnauthorized, "TOKEN_REQUIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRequireActiveSession(t *testing.T) {
	claims := &service.Claims{UserID: uuid.New().String()}

	ended := newAuthRouter(&stubAuth{claims: claims, sessionErr: service.ErrSessionEnded})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	ended.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_INVALIDATED")

	broken := newAuthRouter(&stubAuth{claims: claims, sessionErr: errors.New("redis down")})
	w = httptest.NewRecorder()
	broken.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("1.1.1.1"))
	assert.False(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("2.2.2.2"), "per ip")

	now = now.Add(time.Minute)
	assert.True(t, rl.allow("1.1.1.1"), "refilled")

	now = now.Add(10 * time.Minute)
	rl.cleanup()
	rl.mu.Lock()
	assert.Empty(t, rl.visitors)
	rl.mu.Unlock()
}

func TestRateLimiter_Middleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := gin.New()
	r.POST("/signin", NewRateLimiter(ctx, 1, time.Minute).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/signin", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/signin", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("attendance ", 500)

	r := gin.New()
	r.Use(NoStore(), BrotliWithConfig(BrotliConfig{MinLength: 64}))
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/large", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "br", w.Header().Get("Content-Encoding"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	body, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, large, string(body))

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/large", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"), "client did not ask for br")
	assert.Equal(t, large, w.Body.String())
}
