// Package memory implements the credential and session stores in process
// memory. It backs local development and the HTTP tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "bugscape/internal/errors"
	"bugscape/internal/model"
	"bugscape/internal/repository"
)

// UserRepository is a map-backed repository.UserRepository.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]model.User
	byEmail map[string]string
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]model.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return apperrors.ErrDuplicateCredential
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	r.users[user.ID] = cloneUser(*user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) Save(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.users[user.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if owner, taken := r.byEmail[user.Email]; taken && owner != user.ID {
		return apperrors.ErrDuplicateCredential
	}

	user.UpdatedAt = time.Now().UTC()
	delete(r.byEmail, prev.Email)
	r.users[user.ID] = cloneUser(*user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(r.users, id)
	delete(r.byEmail, u.Email)
	return nil
}

func (r *UserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func cloneUser(u model.User) model.User {
	if u.Roles != nil {
		u.Roles = append([]model.RoleGrant(nil), u.Roles...)
	}
	if u.PasswordResetCode != nil {
		code := *u.PasswordResetCode
		u.PasswordResetCode = &code
	}
	return u
}

// SessionRepository is a slice-backed repository.SessionRepository that
// keeps sessions in creation order.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions []model.Session
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

func (r *SessionRepository) Create(_ context.Context, userID, userAgent string) (*model.Session, error) {
	now := time.Now().UTC()
	s := model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Valid:     true,
		UserAgent: userAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.sessions = append(r.sessions, s)
	r.mu.Unlock()
	return &s, nil
}

func (r *SessionRepository) FindByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sessions {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *SessionRepository) Find(_ context.Context, filter repository.SessionFilter) ([]model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Session{}
	for _, s := range r.sessions {
		if filter.Matches(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *SessionRepository) UpdateOne(_ context.Context, filter repository.SessionFilter, patch repository.SessionPatch) (int64, error) {
	if filter.IsEmpty() {
		return 0, repository.ErrEmptyFilter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.sessions {
		if filter.Matches(r.sessions[i]) {
			patch.Apply(&r.sessions[i])
			r.sessions[i].UpdatedAt = time.Now().UTC()
			return 1, nil
		}
	}
	return 0, nil
}

func (r *SessionRepository) DeleteOne(_ context.Context, filter repository.SessionFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, repository.ErrEmptyFilter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.sessions {
		if filter.Matches(r.sessions[i]) {
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}
