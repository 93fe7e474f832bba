package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bunkmate/bunkmate-backend/internal/middleware"
	"github.com/bunkmate/bunkmate-backend/internal/model"
	"github.com/bunkmate/bunkmate-backend/internal/response"
	"github.com/bunkmate/bunkmate-backend/internal/service"
	"github.com/bunkmate/bunkmate-backend/internal/validator"
)

// SubjectHandler handles the signed-in user's subjects.
type SubjectHandler struct {
	subjectService SubjectService
	log            zerolog.Logger
}

// NewSubjectHandler creates a new SubjectHandler.
func NewSubjectHandler(subjectService SubjectService, log zerolog.Logger) *SubjectHandler {
	return &SubjectHandler{
		subjectService: subjectService,
		log:            log.With().Str("component", "subject_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/subjects
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.subjectService.List(c.Request.Context(), middleware.GetSessionID(c), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// Create godoc
// POST /api/v1/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	var req model.CreateSubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.subjectService.Create(c.Request.Context(), middleware.GetSessionID(c), middleware.GetUserID(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// MarkAttended godoc
// POST /api/v1/subjects/:id/attended
func (h *SubjectHandler) MarkAttended(c *gin.Context) {
	h.mark(c, h.subjectService.MarkAttended)
}

// MarkMissed godoc
// POST /api/v1/subjects/:id/missed
func (h *SubjectHandler) MarkMissed(c *gin.Context) {
	h.mark(c, h.subjectService.MarkMissed)
}

type markFunc func(ctx context.Context, sessionID string, userID, subjectID uuid.UUID) (*model.SubjectView, error)

func (h *SubjectHandler) mark(c *gin.Context, fn markFunc) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	view, err := fn(c.Request.Context(), middleware.GetSessionID(c), middleware.GetUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Update godoc
// PUT /api/v1/subjects/:id
// Overwrites attended and total.
func (h *SubjectHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.UpdateAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.subjectService.UpdateCounts(c.Request.Context(), middleware.GetSessionID(c), middleware.GetUserID(c),
		id, *req.Attended, *req.Total)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Delete godoc
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.subjectService.Delete(c.Request.Context(), middleware.GetSessionID(c), middleware.GetUserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// History godoc
// GET /api/v1/subjects/:id/history
func (h *SubjectHandler) History(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	records, err := h.subjectService.History(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"records": records})
}

func (h *SubjectHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.Error(c, response.ErrSubjectNotFound)
	case errors.Is(err, service.ErrEmptySubjectName):
		response.Error(c, response.ErrEmptySubjectName)
	case errors.Is(err, service.ErrAttendedExceedsTotal):
		response.Error(c, response.ErrAttendedExceedsTotal)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Subject request failed")
		response.Error(c, response.ErrInternal)
	}
}

// parseID reads the :id path parameter, writing an error response when it is not a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
