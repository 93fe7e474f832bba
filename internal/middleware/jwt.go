package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bunkmate/bunkmate-backend/internal/response"
	"github.com/bunkmate/bunkmate-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
	// ContextKeyUserID is the Gin context key for the parsed user id.
	ContextKeyUserID = "user_id"
)

var errTokenMissing = errors.New("authorization header or token query required")

// Authenticator validates tokens and their sessions.
type Authenticator interface {
	ValidateToken(tokenStr string) (*service.Claims, error)
	ValidateSession(ctx context.Context, claims *service.Claims) error
}

// RequireAuth validates a JWT from the Authorization header, falling back to
// the ?token= query parameter for WebSocket upgrades which cannot send headers.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractAndValidateClaims(c, auth)
		if err != nil {
			code := response.ErrTokenInvalid
			if errors.Is(err, errTokenMissing) {
				code = response.ErrTokenRequired
			}
			response.AbortFail(c, http.StatusUnauthorized, code)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetUserID retrieves the authenticated user id from the Gin context.
func GetUserID(c *gin.Context) uuid.UUID {
	val, _ := c.Get(ContextKeyUserID)
	id, _ := val.(uuid.UUID)
	return id
}

// GetSessionID returns the session id of the authenticated request, or "".
func GetSessionID(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return claims.SessionID()
	}
	return ""
}

func extractAndValidateClaims(c *gin.Context, auth Authenticator) (*service.Claims, error) {
	tokenStr := ""

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			tokenStr = strings.TrimSpace(parts[1])
		}
	}

	if tokenStr == "" {
		tokenStr = c.Query("token")
	}

	if tokenStr == "" {
		return nil, errTokenMissing
	}

	return auth.ValidateToken(tokenStr)
}
