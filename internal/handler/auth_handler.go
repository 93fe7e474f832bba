package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bunkmate/bunkmate-backend/internal/middleware"
	"github.com/bunkmate/bunkmate-backend/internal/model"
	"github.com/bunkmate/bunkmate-backend/internal/response"
	"github.com/bunkmate/bunkmate-backend/internal/service"
	"github.com/bunkmate/bunkmate-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService    AuthService
	profileService ProfileService
	log            zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService AuthService, profileService ProfileService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
		log:            log.With().Str("component", "auth_handler").Logger(),
	}
}

// SignUp godoc
// POST /api/v1/auth/signup
// Creates an account and signs it in.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req model.SignUpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.authService.SignUp(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Error(c, response.ErrEmailTaken)
			return
		}
		h.log.Error().Err(err).Msg("Sign up failed")
		response.Error(c, response.ErrInternal)
		return
	}

	h.issueToken(c, http.StatusCreated, user)
}

// SignIn godoc
// POST /api/v1/auth/signin
// Validates email + password, returns JWT.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req model.SignInRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, response.ErrInvalidCredentials)
			return
		}
		h.log.Error().Err(err).Msg("Sign in failed")
		response.Error(c, response.ErrInternal)
		return
	}

	h.issueToken(c, http.StatusOK, user)
}

func (h *AuthHandler) issueToken(c *gin.Context, status int, user *model.User) {
	token, err := h.authService.GenerateToken(c.Request.Context(), user)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Token generation failed")
		response.Error(c, response.ErrInternal)
		return
	}

	response.Success(c, status, gin.H{
		"token": token,
		"user":  user,
	})
}

// SignOut godoc
// POST /api/v1/auth/signout
// Ends the current session.
func (h *AuthHandler) SignOut(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Error(c, response.ErrTokenRequired)
		return
	}

	if err := h.authService.SignOut(c.Request.Context(), claims); err != nil {
		h.log.Error().Err(err).Msg("Sign out failed")
		response.Error(c, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the signed-in user, including their friend code.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.profileService.GetByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Error(c, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
