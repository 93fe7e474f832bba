package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/bunkmate/bunkmate-backend/internal/alert"
	"github.com/bunkmate/bunkmate-backend/internal/attendance"
)

// Subject is a course whose attendance a user tracks.
type Subject struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Name              string    `json:"name"`
	Attended          int       `json:"attended"`
	Total             int       `json:"total"`
	MinimumAttendance int       `json:"minimum_attendance"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Evaluate runs the subject's counts through the attendance calculator.
func (s *Subject) Evaluate() attendance.Observation {
	return attendance.Evaluate(s.Attended, s.Total, s.MinimumAttendance)
}

// SubjectView is a subject together with its computed attendance and, when the
// subject just entered the danger or warning zone, the notification to show.
type SubjectView struct {
	Subject
	Attendance   attendance.Observation `json:"attendance"`
	Notification *alert.Event           `json:"notification,omitempty"`
}

// NewSubjectView evaluates s.
func NewSubjectView(s *Subject) SubjectView {
	return SubjectView{Subject: *s, Attendance: s.Evaluate()}
}

// CreateSubjectRequest is the payload for creating a subject.
// MinimumAttendance defaults to 75 when omitted.
type CreateSubjectRequest struct {
	Name              string `json:"name" binding:"required,notblank,max=100"`
	MinimumAttendance *int   `json:"minimum_attendance" binding:"omitempty,min=0,max=100"`
	Attended          int    `json:"attended" binding:"min=0"`
	Total             int    `json:"total" binding:"min=0"`
}

// UpdateAttendanceRequest overwrites a subject's counts.
type UpdateAttendanceRequest struct {
	Attended *int `json:"attended" binding:"required,min=0"`
	Total    *int `json:"total" binding:"required,min=0"`
}
