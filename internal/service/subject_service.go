package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bunkmate/bunkmate-backend/internal/alert"
	"github.com/bunkmate/bunkmate-backend/internal/attendance"
	"github.com/bunkmate/bunkmate-backend/internal/metrics"
	"github.com/bunkmate/bunkmate-backend/internal/model"
	"github.com/bunkmate/bunkmate-backend/internal/repository"
)

var (
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrEmptySubjectName     = errors.New("subject name is empty")
	ErrAttendedExceedsTotal = errors.New("attended exceeds total")
)

// SubjectService manages a user's subjects and feeds every change through the
// session's zone notifier.
type SubjectService struct {
	subjects  SubjectStore
	records   RecordStore
	queue     RecordQueue
	publisher NotificationPublisher
	alerts    *alert.Registry
	metrics   *metrics.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// NewSubjectService creates a new SubjectService. m may be nil.
func NewSubjectService(
	subjects SubjectStore,
	records RecordStore,
	queue RecordQueue,
	publisher NotificationPublisher,
	alerts *alert.Registry,
	m *metrics.Metrics,
	log zerolog.Logger,
) *SubjectService {
	return &SubjectService{
		subjects:  subjects,
		records:   records,
		queue:     queue,
		publisher: publisher,
		alerts:    alerts,
		metrics:   m,
		log:       log.With().Str("component", "subject_service").Logger(),
		now:       time.Now,
	}
}

// List returns every subject of the user in creation order.
func (s *SubjectService) List(ctx context.Context, sessionID string, userID uuid.UUID) ([]model.SubjectView, error) {
	sess := s.alerts.Lock(sessionID)
	defer sess.Unlock()

	subjects, err := s.subjects.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	views := make([]model.SubjectView, 0, len(subjects))
	for i := range subjects {
		views = append(views, s.observe(ctx, sess, &subjects[i]))
	}
	return views, nil
}

// Create adds a subject. The minimum attendance defaults to 75.
func (s *SubjectService) Create(ctx context.Context, sessionID string, userID uuid.UUID, req *model.CreateSubjectRequest) (*model.SubjectView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptySubjectName
	}
	if req.Attended > req.Total {
		return nil, ErrAttendedExceedsTotal
	}

	minimum := attendance.DefaultMinimumAttendance
	if req.MinimumAttendance != nil {
		minimum = attendance.ClampMinimum(*req.MinimumAttendance)
	}

	subject := &model.Subject{
		UserID:            userID,
		Name:              name,
		Attended:          max(req.Attended, 0),
		Total:             max(req.Total, 0),
		MinimumAttendance: minimum,
	}

	sess := s.alerts.Lock(sessionID)
	defer sess.Unlock()

	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}

	s.log.Debug().Str("subject_id", subject.ID.String()).Str("user_id", userID.String()).Msg("Subject created")
	view := s.observe(ctx, sess, subject)
	return &view, nil
}

// MarkAttended counts one more class as attended.
func (s *SubjectService) MarkAttended(ctx context.Context, sessionID string, userID, subjectID uuid.UUID) (*model.SubjectView, error) {
	return s.mark(ctx, sessionID, userID, subjectID, true)
}

// MarkMissed counts one more class as missed.
func (s *SubjectService) MarkMissed(ctx context.Context, sessionID string, userID, subjectID uuid.UUID) (*model.SubjectView, error) {
	return s.mark(ctx, sessionID, userID, subjectID, false)
}

func (s *SubjectService) mark(ctx context.Context, sessionID string, userID, subjectID uuid.UUID, attended bool) (*model.SubjectView, error) {
	// The session stays locked from the write until the notifier has seen its
	// result, so concurrent marks are observed in commit order.
	sess := s.alerts.Lock(sessionID)
	defer sess.Unlock()

	subject, err := s.subjects.Increment(ctx, userID, subjectID, attended)
	if err != nil {
		return nil, mapSubjectErr(err)
	}

	outcome := "missed"
	if attended {
		outcome = "attended"
	}
	if s.metrics != nil {
		s.metrics.AttendanceMarks.WithLabelValues(outcome).Inc()
	}
	s.record(ctx, subject, attended)

	view := s.observe(ctx, sess, subject)
	return &view, nil
}

// UpdateCounts overwrites attended and total. A change is logged to the history
// as attended when the attended count went up.
func (s *SubjectService) UpdateCounts(ctx context.Context, sessionID string, userID, subjectID uuid.UUID, attended, total int) (*model.SubjectView, error) {
	if attended > total {
		return nil, ErrAttendedExceedsTotal
	}
	attended, total = max(attended, 0), max(total, 0)

	sess := s.alerts.Lock(sessionID)
	defer sess.Unlock()

	before, err := s.subjects.GetByID(ctx, userID, subjectID)
	if err != nil {
		return nil, mapSubjectErr(err)
	}

	subject, err := s.subjects.UpdateCounts(ctx, userID, subjectID, attended, total)
	if err != nil {
		return nil, mapSubjectErr(err)
	}
	if before.Attended != attended || before.Total != total {
		s.record(ctx, subject, attended > before.Attended)
	}

	view := s.observe(ctx, sess, subject)
	return &view, nil
}

// record queues a history entry for the subject.
func (s *SubjectService) record(ctx context.Context, subject *model.Subject, attended bool) {
	rec := model.AttendanceRecord{
		ID:         uuid.New(),
		SubjectID:  subject.ID,
		UserID:     subject.UserID,
		Attended:   attended,
		RecordedAt: s.now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, rec); err != nil {
		// The counts are already updated; only the history entry is lost.
		s.log.Error().Err(err).Str("subject_id", subject.ID.String()).Msg("Failed to enqueue attendance record")
	}
}

// Delete removes a subject and its zone memory for the session.
func (s *SubjectService) Delete(ctx context.Context, sessionID string, userID, subjectID uuid.UUID) error {
	sess := s.alerts.Lock(sessionID)
	defer sess.Unlock()

	if err := s.subjects.Delete(ctx, userID, subjectID); err != nil {
		return mapSubjectErr(err)
	}
	sess.Forget(subjectID.String())
	return nil
}

// History returns the attendance changes of a subject, newest first.
func (s *SubjectService) History(ctx context.Context, userID, subjectID uuid.UUID) ([]model.AttendanceRecord, error) {
	if _, err := s.subjects.GetByID(ctx, userID, subjectID); err != nil {
		return nil, mapSubjectErr(err)
	}

	records, err := s.records.ListBySubject(ctx, userID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return records, nil
}

// observe evaluates the subject and passes it through the locked session's
// notifier. Any resulting event is attached to the view and published to the
// user's live connections.
func (s *SubjectService) observe(ctx context.Context, sess *alert.Session, subject *model.Subject) model.SubjectView {
	view := model.NewSubjectView(subject)

	ev := sess.Observe(subject.ID.String(), subject.Name,
		float64(view.Attendance.Percentage), subject.MinimumAttendance)
	if ev == nil {
		return view
	}
	view.Notification = ev

	if s.metrics != nil {
		s.metrics.Notifications.WithLabelValues(string(ev.Kind)).Inc()
	}
	if err := s.publisher.Publish(ctx, subject.UserID.String(), *ev); err != nil {
		s.log.Warn().Err(err).Str("subject_id", ev.SubjectID).Msg("Failed to publish notification")
	}
	return view
}

func mapSubjectErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSubjectNotFound
	}
	return err
}
