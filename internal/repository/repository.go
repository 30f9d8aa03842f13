// Package repository holds the credential and session stores. The gorm
// implementation lives here; mongo and memory backends live in subpackages
// and satisfy the same interfaces.
package repository

import (
	"context"
	"errors"

	"bugscape/internal/model"
)

// UserRepository persists users. Lookups that match nothing return
// errors.ErrNotFound; writes that collide on email return
// errors.ErrDuplicateCredential.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.User, error)
}

// SessionFilter selects sessions. Zero fields are ignored.
type SessionFilter struct {
	ID     string
	UserID string
	Valid  *bool
}

// IsEmpty reports whether the filter would match every session.
func (f SessionFilter) IsEmpty() bool {
	return f.ID == "" && f.UserID == "" && f.Valid == nil
}

// Matches reports whether s satisfies the filter.
func (f SessionFilter) Matches(s model.Session) bool {
	if f.ID != "" && s.ID != f.ID {
		return false
	}
	if f.UserID != "" && s.UserID != f.UserID {
		return false
	}
	if f.Valid != nil && s.Valid != *f.Valid {
		return false
	}
	return true
}

// SessionPatch lists the fields UpdateOne may change.
type SessionPatch struct {
	Valid *bool
}

// Apply writes the patch onto s.
func (p SessionPatch) Apply(s *model.Session) {
	if p.Valid != nil {
		s.Valid = *p.Valid
	}
}

// SessionRepository persists sessions. UpdateOne and DeleteOne touch at
// most one session and return how many matched.
type SessionRepository interface {
	Create(ctx context.Context, userID, userAgent string) (*model.Session, error)
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Find(ctx context.Context, filter SessionFilter) ([]model.Session, error)
	UpdateOne(ctx context.Context, filter SessionFilter, patch SessionPatch) (int64, error)
	DeleteOne(ctx context.Context, filter SessionFilter) (int64, error)
}

// ErrEmptyFilter is returned by single-row writes given an empty filter.
var ErrEmptyFilter = errors.New("session filter must not be empty")

// Bool returns a pointer to b, for filters and patches.
func Bool(b bool) *bool { return &b }
