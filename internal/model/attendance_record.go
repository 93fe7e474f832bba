package model

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord logs a single "attended" or "missed" action on a subject.
type AttendanceRecord struct {
	ID         uuid.UUID `json:"id"`
	SubjectID  uuid.UUID `json:"subject_id"`
	UserID     uuid.UUID `json:"user_id"`
	Attended   bool      `json:"attended"`
	RecordedAt time.Time `json:"recorded_at"`
}
