package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bunkmate/bunkmate-backend/internal/alert"
	"github.com/bunkmate/bunkmate-backend/internal/model"
)

// The interfaces below are what the services need from storage. The pgx and
// Redis implementations live in internal/repository, internal/queue and
// internal/notification.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByFriendCode(ctx context.Context, code string) (*model.User, error)
}

type SessionStore interface {
	Save(ctx context.Context, jti, userID string, ttl time.Duration) error
	UserID(ctx context.Context, jti string) (string, error)
	Delete(ctx context.Context, jti string) error
}

type SubjectStore interface {
	Create(ctx context.Context, s *model.Subject) error
	ListByUser(ctx context.Context, userID uuid.UUID, newestFirst bool) ([]model.Subject, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Subject, error)
	Increment(ctx context.Context, userID, id uuid.UUID, attended bool) (*model.Subject, error)
	UpdateCounts(ctx context.Context, userID, id uuid.UUID, attended, total int) (*model.Subject, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type RecordStore interface {
	ListBySubject(ctx context.Context, userID, subjectID uuid.UUID) ([]model.AttendanceRecord, error)
}

type FriendStore interface {
	Create(ctx context.Context, f *model.Friend) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Friend, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Friend, error)
	Exists(ctx context.Context, userID, friendID uuid.UUID) (bool, error)
	UpdateName(ctx context.Context, userID, id uuid.UUID, name string) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// RecordQueue accepts attendance records for asynchronous persistence.
type RecordQueue interface {
	Enqueue(ctx context.Context, rec model.AttendanceRecord) error
}

// NotificationPublisher delivers zone notifications to a user's live connections.
type NotificationPublisher interface {
	Publish(ctx context.Context, userID string, ev alert.Event) error
}
