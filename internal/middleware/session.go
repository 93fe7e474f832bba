package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bunkmate/bunkmate-backend/internal/response"
	"github.com/bunkmate/bunkmate-backend/internal/service"
)

// RequireActiveSession rejects tokens whose session was signed out.
// It must run after RequireAuth.
func RequireActiveSession(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := auth.ValidateSession(c.Request.Context(), claims); err != nil {
			if errors.Is(err, service.ErrSessionEnded) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
				return
			}
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		c.Next()
	}
}
