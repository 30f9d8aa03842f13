package service

import (
	"context"
	"errors"
	"fmt"

	"bugscape/internal/auth"
	apperrors "bugscape/internal/errors"
	"bugscape/internal/logging"
	"bugscape/internal/model"
	"bugscape/internal/repository"
)

// TokenIssuer mints and checks the tokens of a session.
// It is satisfied by *auth.JWTService.
type TokenIssuer interface {
	GenerateAccessToken(user model.PublicUser, sessionID string) (string, error)
	GenerateRefreshToken(userID, sessionID string) (string, error)
	VerifyRefreshToken(token string) (*auth.RefreshClaims, auth.Verification)
}

// LoginResult is what a successful login hands back to the transport.
type LoginResult struct {
	User         model.PublicUser
	Session      model.Session
	AccessToken  string
	RefreshToken string
}

// SessionService handles sign-in, token refresh and sign-out.
type SessionService interface {
	Login(ctx context.Context, email, password, userAgent string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, identity *auth.Identity) (bool, error)
	ListSessions(ctx context.Context, userID string) ([]model.Session, error)
}

type sessionService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	hasher   auth.PasswordHasher
	tokens   TokenIssuer
	logger   logging.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	hasher auth.PasswordHasher,
	tokens TokenIssuer,
	logger logging.Logger,
) SessionService {
	return &sessionService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login verifies credentials and opens a new session. Unknown emails and
// wrong passwords fail identically; the verified check runs only after the
// password matched so it reveals nothing to a guesser.
func (s *sessionService) Login(ctx context.Context, email, password, userAgent string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredential
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredential
	}

	if !user.Verified {
		return nil, apperrors.ErrAccountNotVerified
	}

	session, err := s.sessions.Create(ctx, user.ID, userAgent)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	public := user.Public()
	accessToken, err := s.tokens.GenerateAccessToken(public, session.ID)
	if err != nil {
		s.abandon(ctx, session.ID)
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID, session.ID)
	if err != nil {
		s.abandon(ctx, session.ID)
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	s.logger.Info(ctx, "session created", "user_id", user.ID, "session_id", session.ID)

	return &LoginResult{
		User:         public,
		Session:      *session,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// abandon invalidates a session whose tokens could not be minted.
func (s *sessionService) abandon(ctx context.Context, sessionID string) {
	_, err := s.sessions.UpdateOne(ctx,
		repository.SessionFilter{ID: sessionID},
		repository.SessionPatch{Valid: repository.Bool(false)},
	)
	if err != nil {
		s.logger.Error(ctx, "could not invalidate abandoned session", "session_id", sessionID, "error", err)
	}
}

// Refresh exchanges a refresh token for a new access token. Refresh tokens
// are not rotated.
func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.ErrUnauthenticated
	}

	claims, v := s.tokens.VerifyRefreshToken(refreshToken)
	if !v.Valid() {
		return "", fmt.Errorf("%w: refresh token %s", apperrors.ErrUnauthenticated, v.Status)
	}

	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: session not found", apperrors.ErrForbidden)
		}
		return "", fmt.Errorf("find session: %w", err)
	}
	if !session.Valid {
		return "", fmt.Errorf("%w: session invalidated", apperrors.ErrForbidden)
	}
	if claims.UserID != "" && claims.UserID != session.UserID {
		return "", fmt.Errorf("%w: session owner mismatch", apperrors.ErrForbidden)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: user not found", apperrors.ErrForbidden)
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.Public(), session.ID)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates the caller's session. It reports whether a session
// was matched; a missing identity is a no-op.
func (s *sessionService) Logout(ctx context.Context, identity *auth.Identity) (bool, error) {
	if identity == nil || identity.SessionID == "" {
		return false, nil
	}

	n, err := s.sessions.UpdateOne(ctx,
		repository.SessionFilter{ID: identity.SessionID},
		repository.SessionPatch{Valid: repository.Bool(false)},
	)
	if err != nil {
		return false, fmt.Errorf("invalidate session: %w", err)
	}

	if n > 0 {
		s.logger.Info(ctx, "session invalidated", "user_id", identity.UserID, "session_id", identity.SessionID)
	}
	return n > 0, nil
}

// ListSessions returns the user's valid sessions, oldest first.
func (s *sessionService) ListSessions(ctx context.Context, userID string) ([]model.Session, error) {
	sessions, err := s.sessions.Find(ctx, repository.SessionFilter{UserID: userID, Valid: repository.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
