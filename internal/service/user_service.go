package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bugscape/internal/auth"
	"bugscape/internal/cache"
	apperrors "bugscape/internal/errors"
	"bugscape/internal/logging"
	"bugscape/internal/model"
	"bugscape/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// Messages returned by the account flows.
const (
	MsgAlreadyVerified     = "User is already verified."
	MsgVerifyFailed        = "Unable to verify user."
	MsgResetNotVerified    = "User account is not verified."
	MsgResetFailed         = "Could not reset user password."
	MsgUserHasAssignedWork = "User has assigned tickets."
)

// Cache is the read-through cache used for user lookups.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

var _ Cache = (*cache.Client)(nil)

// WorkReferences reports whether a user still owns work elsewhere in the
// tracker, which blocks deleting the account.
type WorkReferences interface {
	HasAssignedWork(ctx context.Context, userID string) (bool, error)
}

// NoWorkReferences is used when no ticket service is wired in.
type NoWorkReferences struct{}

func (NoWorkReferences) HasAssignedWork(context.Context, string) (bool, error) { return false, nil }

// RegisterInput carries a new account's details.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateInput carries a partial account update. Empty fields are left unchanged.
type UpdateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserService handles account registration and self-service.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Verify(ctx context.Context, id, code string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, id, code, password string) error
	Get(ctx context.Context, id string) (*model.PublicUser, error)
	List(ctx context.Context) ([]model.PublicUser, error)
	Update(ctx context.Context, id string, in UpdateInput) (*model.PublicUser, error)
	Delete(ctx context.Context, id string) (*model.PublicUser, error)
}

type userService struct {
	repo    repository.UserRepository
	hasher  auth.PasswordHasher
	cache   Cache
	mailer  Mailer
	work    WorkReferences
	baseURL string
	logger  logging.Logger
}

// UserServiceDeps groups the collaborators of the user service.
type UserServiceDeps struct {
	Repo    repository.UserRepository
	Hasher  auth.PasswordHasher
	Cache   Cache
	Mailer  Mailer
	Work    WorkReferences
	BaseURL string
	Logger  logging.Logger
}

// NewUserService creates a new user service.
func NewUserService(d UserServiceDeps) UserService {
	if d.Work == nil {
		d.Work = NoWorkReferences{}
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if d.Mailer == nil {
		d.Mailer = NewLogMailer(d.Logger)
	}
	if d.Cache == nil {
		d.Cache = (*cache.Client)(nil)
	}
	return &userService{
		repo:    d.Repo,
		hasher:  d.Hasher,
		cache:   d.Cache,
		mailer:  d.Mailer,
		work:    d.Work,
		baseURL: d.BaseURL,
		logger:  d.Logger,
	}
}

func (s *userService) cacheKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) invalidate(ctx context.Context, id string) {
	_ = s.cache.Delete(ctx, s.cacheKey(id))
}

// Register creates an unverified account and mails its verification code.
func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := model.NormalizeEmail(in.Email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateCredential
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	user := &model.User{
		ID:               uuid.NewString(),
		Email:            email,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		VerificationCode: uuid.NewString(),
	}
	if err := user.SetPassword(s.hasher, in.Password); err != nil {
		if errors.Is(err, model.ErrEmptyPassword) {
			return nil, apperrors.Validation("Password is required.")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateCredential) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.Send(ctx, verificationMail(user, s.baseURL)); err != nil {
		s.logger.Warn(ctx, "could not send verification mail", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// Verify marks the account verified when code matches. The code is single
// use and cleared on success.
func (s *userService) Verify(ctx context.Context, id, code string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Verified {
		return apperrors.Validation(MsgAlreadyVerified)
	}
	if code == "" || code != user.VerificationCode {
		return apperrors.Validation(MsgVerifyFailed)
	}

	user.Verified = true
	user.VerificationCode = ""
	if err := s.repo.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// ForgotPassword issues a password reset code. Unknown emails succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}
	if !user.Verified {
		return apperrors.Validation(MsgResetNotVerified)
	}

	code := uuid.NewString()
	user.PasswordResetCode = &code
	if err := s.repo.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	if err := s.mailer.Send(ctx, passwordResetMail(user)); err != nil {
		s.logger.Warn(ctx, "could not send password reset mail", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword sets a new password when code matches the pending reset code.
func (s *userService) ResetPassword(ctx context.Context, id, code, password string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Validation(MsgResetFailed)
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.PasswordResetCode == nil || *user.PasswordResetCode == "" || *user.PasswordResetCode != code {
		return apperrors.Validation(MsgResetFailed)
	}

	user.PasswordResetCode = nil
	if err := user.SetPassword(s.hasher, password); err != nil {
		if errors.Is(err, model.ErrEmptyPassword) {
			return apperrors.Validation("Password is required.")
		}
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// Get returns the redacted user, served from cache when possible.
func (s *userService) Get(ctx context.Context, id string) (*model.PublicUser, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.PublicUser
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	public := user.Public()
	if payload, err := json.Marshal(public); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return &public, nil
}

func (s *userService) List(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]model.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

// Update applies a partial update to the user's own account.
func (s *userService) Update(ctx context.Context, id string, in UpdateInput) (*model.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != "" {
		email := model.NormalizeEmail(in.Email)
		if email != user.Email {
			other, err := s.repo.FindByEmail(ctx, email)
			if err == nil && other.ID != user.ID {
				return nil, apperrors.ErrDuplicateCredential
			}
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("check user existence: %w", err)
			}
			user.Email = email
		}
	}
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.Password != "" {
		if err := user.SetPassword(s.hasher, in.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.repo.Save(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateCredential) {
			return nil, err
		}
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.invalidate(ctx, id)

	public := user.Public()
	return &public, nil
}

// Delete removes the account unless the user still has assigned work.
// Sessions are left in place; they stop refreshing once the user is gone.
func (s *userService) Delete(ctx context.Context, id string) (*model.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	assigned, err := s.work.HasAssignedWork(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check assigned work: %w", err)
	}
	if assigned {
		return nil, apperrors.Validation(MsgUserHasAssignedWork)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	s.logger.Info(ctx, "user deleted", "user_id", id)
	public := user.Public()
	return &public, nil
}
