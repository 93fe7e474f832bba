package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bunkmate/bunkmate-backend/internal/model"
	"github.com/bunkmate/bunkmate-backend/internal/repository"
	"github.com/bunkmate/bunkmate-backend/internal/validator"
)

var (
	ErrInvalidFriendCode = errors.New("invalid friend code")
	ErrCannotAddSelf     = errors.New("cannot add self as friend")
	ErrAlreadyFriends    = errors.New("already friends")
	ErrFriendNotFound    = errors.New("friend not found")
	ErrEmptyFriendName   = errors.New("friend name is empty")
)

// FriendService manages friend links and read-only access to friends' subjects.
type FriendService struct {
	users    UserStore
	friends  FriendStore
	subjects SubjectStore
	log      zerolog.Logger
}

func NewFriendService(users UserStore, friends FriendStore, subjects SubjectStore, log zerolog.Logger) *FriendService {
	return &FriendService{
		users:    users,
		friends:  friends,
		subjects: subjects,
		log:      log.With().Str("component", "friend_service").Logger(),
	}
}

// Add links the user to whoever owns the friend code.
func (s *FriendService) Add(ctx context.Context, userID uuid.UUID, code string) (*model.Friend, error) {
	code = strings.TrimSpace(code)
	if !validator.IsFriendCode(code) {
		return nil, ErrInvalidFriendCode
	}

	target, err := s.users.GetByFriendCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("look up friend code: %w", err)
	}
	if target.ID == userID {
		return nil, ErrCannotAddSelf
	}

	exists, err := s.friends.Exists(ctx, userID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("check friendship: %w", err)
	}
	if exists {
		return nil, ErrAlreadyFriends
	}

	name := strings.TrimSpace(target.FullName)
	if name == "" {
		name = unknownUserName
	}

	f := &model.Friend{
		UserID:     userID,
		FriendID:   target.ID,
		FriendName: name,
		FriendCode: target.FriendCode,
	}
	if err := s.friends.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicateFriend) {
			return nil, ErrAlreadyFriends
		}
		return nil, fmt.Errorf("create friend: %w", err)
	}

	s.log.Debug().Str("user_id", userID.String()).Str("friend_id", target.ID.String()).Msg("Friend added")
	return f, nil
}

func (s *FriendService) List(ctx context.Context, userID uuid.UUID) ([]model.Friend, error) {
	friends, err := s.friends.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return friends, nil
}

// Rename changes the display name stored for a friend.
func (s *FriendService) Rename(ctx context.Context, userID, id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyFriendName
	}
	return mapFriendErr(s.friends.UpdateName(ctx, userID, id, name))
}

func (s *FriendService) Remove(ctx context.Context, userID, id uuid.UUID) error {
	return mapFriendErr(s.friends.Delete(ctx, userID, id))
}

// Subjects returns the friend's subjects, newest first, evaluated but never
// passed through a notifier.
func (s *FriendService) Subjects(ctx context.Context, userID, id uuid.UUID) (*model.Friend, []model.SubjectView, error) {
	f, err := s.friends.GetByID(ctx, userID, id)
	if err != nil {
		return nil, nil, mapFriendErr(err)
	}

	subjects, err := s.subjects.ListByUser(ctx, f.FriendID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("list friend subjects: %w", err)
	}

	views := make([]model.SubjectView, 0, len(subjects))
	for i := range subjects {
		views = append(views, model.NewSubjectView(&subjects[i]))
	}
	return f, views, nil
}

func mapFriendErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFriendNotFound
	}
	return err
}
