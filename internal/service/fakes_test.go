package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bunkmate/bunkmate-backend/internal/alert"
	"github.com/bunkmate/bunkmate-backend/internal/model"
	"github.com/bunkmate/bunkmate-backend/internal/repository"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
	// createErrs is consumed one entry per Create call before storing.
	createErrs []error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
		if existing.FriendCode == u.FriendCode {
			return repository.ErrDuplicateFriendCode
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *fakeUserStore) GetByFriendCode(_ context.Context, code string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.FriendCode == code })
}

func (f *fakeUserStore) find(match func(*model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
	ttls     map[string]time.Duration
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeSessionStore) Save(_ context.Context, jti, userID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[jti] = userID
	f.ttls[jti] = ttl
	return nil
}

func (f *fakeSessionStore) UserID(_ context.Context, jti string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.sessions[jti]; ok {
		return id, nil
	}
	return "", repository.ErrNotFound
}

func (f *fakeSessionStore) Delete(_ context.Context, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, jti)
	return nil
}

type fakeSubjectStore struct {
	mu       sync.Mutex
	subjects map[uuid.UUID]*model.Subject
	clock    time.Time
}

func newFakeSubjectStore() *fakeSubjectStore {
	return &fakeSubjectStore{
		subjects: make(map[uuid.UUID]*model.Subject),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeSubjectStore) Create(_ context.Context, s *model.Subject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Minute)
	s.ID = uuid.New()
	s.CreatedAt = f.clock
	s.UpdatedAt = f.clock
	cp := *s
	f.subjects[s.ID] = &cp
	return nil
}

func (f *fakeSubjectStore) ListByUser(_ context.Context, userID uuid.UUID, newestFirst bool) ([]model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Subject
	for _, s := range f.subjects {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeSubjectStore) GetByID(_ context.Context, userID, id uuid.UUID) (*model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subjects[id]
	if !ok || s.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubjectStore) Increment(_ context.Context, userID, id uuid.UUID, attended bool) (*model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subjects[id]
	if !ok || s.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if attended {
		s.Attended++
	}
	s.Total++
	cp := *s
	return &cp, nil
}

func (f *fakeSubjectStore) UpdateCounts(_ context.Context, userID, id uuid.UUID, attended, total int) (*model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subjects[id]
	if !ok || s.UserID != userID {
		return nil, repository.ErrNotFound
	}
	s.Attended, s.Total = attended, total
	cp := *s
	return &cp, nil
}

func (f *fakeSubjectStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subjects[id]
	if !ok || s.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.subjects, id)
	return nil
}

type fakeRecordStore struct {
	records []model.AttendanceRecord
}

func (f *fakeRecordStore) ListBySubject(_ context.Context, userID, subjectID uuid.UUID) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		r := f.records[i]
		if r.UserID == userID && r.SubjectID == subjectID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeQueue struct {
	mu      sync.Mutex
	records []model.AttendanceRecord
	err     error
}

func (f *fakeQueue) Enqueue(_ context.Context, rec model.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

type published struct {
	userID string
	event  alert.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, userID string, ev alert.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{userID: userID, event: ev})
	return f.err
}

type fakeFriendStore struct {
	mu      sync.Mutex
	friends map[uuid.UUID]*model.Friend
}

func newFakeFriendStore() *fakeFriendStore {
	return &fakeFriendStore{friends: make(map[uuid.UUID]*model.Friend)}
}

func (f *fakeFriendStore) Create(_ context.Context, fr *model.Friend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.friends {
		if existing.UserID == fr.UserID && existing.FriendID == fr.FriendID {
			return repository.ErrDuplicateFriend
		}
	}
	fr.ID = uuid.New()
	fr.AddedAt = time.Now()
	cp := *fr
	f.friends[fr.ID] = &cp
	return nil
}

func (f *fakeFriendStore) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Friend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Friend
	for _, fr := range f.friends {
		if fr.UserID == userID {
			out = append(out, *fr)
		}
	}
	return out, nil
}

func (f *fakeFriendStore) GetByID(_ context.Context, userID, id uuid.UUID) (*model.Friend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fr, ok := f.friends[id]
	if !ok || fr.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *fr
	return &cp, nil
}

func (f *fakeFriendStore) Exists(_ context.Context, userID, friendID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fr := range f.friends {
		if fr.UserID == userID && fr.FriendID == friendID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFriendStore) UpdateName(_ context.Context, userID, id uuid.UUID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fr, ok := f.friends[id]
	if !ok || fr.UserID != userID {
		return repository.ErrNotFound
	}
	fr.FriendName = name
	return nil
}

func (f *fakeFriendStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fr, ok := f.friends[id]
	if !ok || fr.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.friends, id)
	return nil
}
