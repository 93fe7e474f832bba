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

// FriendHandler handles friend links and read-only friend attendance.
type FriendHandler struct {
	friendService FriendService
	log           zerolog.Logger
}

func NewFriendHandler(friendService FriendService, log zerolog.Logger) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
		log:           log.With().Str("component", "friend_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/friends
func (h *FriendHandler) List(c *gin.Context) {
	friends, err := h.friendService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"friends": friends})
}

// Add godoc
// POST /api/v1/friends
// Adds a friend by their 5-digit friend code.
func (h *FriendHandler) Add(c *gin.Context) {
	var req model.AddFriendRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidFriendCode, fields)
		return
	}

	friend, err := h.friendService.Add(c.Request.Context(), middleware.GetUserID(c), req.FriendCode)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, friend)
}

// Rename godoc
// PUT /api/v1/friends/:id
func (h *FriendHandler) Rename(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.RenameFriendRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.friendService.Rename(c.Request.Context(), middleware.GetUserID(c), id, req.FriendName); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Remove godoc
// DELETE /api/v1/friends/:id
func (h *FriendHandler) Remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.friendService.Remove(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Subjects godoc
// GET /api/v1/friends/:id/subjects
// Returns the friend's subjects with computed attendance. Never notifies.
func (h *FriendHandler) Subjects(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	friend, subjects, err := h.friendService.Subjects(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"friend":   friend,
		"subjects": subjects,
	})
}

func (h *FriendHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidFriendCode):
		response.Error(c, response.ErrInvalidFriendCode)
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(c, response.ErrUserNotFound)
	case errors.Is(err, service.ErrCannotAddSelf):
		response.Error(c, response.ErrCannotAddSelf)
	case errors.Is(err, service.ErrAlreadyFriends):
		response.Error(c, response.ErrAlreadyFriends)
	case errors.Is(err, service.ErrFriendNotFound):
		response.Error(c, response.ErrFriendNotFound)
	case errors.Is(err, service.ErrEmptyFriendName):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Friend request failed")
		response.Error(c, response.ErrInternal)
	}
}
