package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bunkmate/bunkmate-backend/internal/model"
	"github.com/bunkmate/bunkmate-backend/internal/service"
)

// Handlers depend on these narrow views of the services.

type AuthService interface {
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	GenerateToken(ctx context.Context, u *model.User) (string, error)
	SignOut(ctx context.Context, claims *service.Claims) error
}

type ProfileService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type SubjectService interface {
	List(ctx context.Context, sessionID string, userID uuid.UUID) ([]model.SubjectView, error)
	Create(ctx context.Context, sessionID string, userID uuid.UUID, req *model.CreateSubjectRequest) (*model.SubjectView, error)
	MarkAttended(ctx context.Context, sessionID string, userID, subjectID uuid.UUID) (*model.SubjectView, error)
	MarkMissed(ctx context.Context, sessionID string, userID, subjectID uuid.UUID) (*model.SubjectView, error)
	UpdateCounts(ctx context.Context, sessionID string, userID, subjectID uuid.UUID, attended, total int) (*model.SubjectView, error)
	Delete(ctx context.Context, sessionID string, userID, subjectID uuid.UUID) error
	History(ctx context.Context, userID, subjectID uuid.UUID) ([]model.AttendanceRecord, error)
}

type FriendService interface {
	Add(ctx context.Context, userID uuid.UUID, code string) (*model.Friend, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Friend, error)
	Rename(ctx context.Context, userID, id uuid.UUID, name string) error
	Remove(ctx context.Context, userID, id uuid.UUID) error
	Subjects(ctx context.Context, userID, id uuid.UUID) (*model.Friend, []model.SubjectView, error)
}

// NotificationSubscriber opens a Pub/Sub subscription on a user's notification channel.
type NotificationSubscriber interface {
	Subscribe(ctx context.Context, userID string) *redis.PubSub
}
