package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bugscape/internal/auth"
	apperrors "bugscape/internal/errors"
	"bugscape/internal/logging"
	"bugscape/internal/model"
	"bugscape/internal/repository"
)

func verifiedUser() *model.User {
	return &model.User{
		ID:           "u-1",
		Email:        "ada@example.com",
		FirstName:    "Ada",
		PasswordHash: "stored-hash",
		Verified:     true,
	}
}

func TestSessionService_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockSessionRepository, *MockHasher)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "  Ada@Example.com ",
			password: "password123",
			setupMock: func(users *MockUserRepository, sessions *MockSessionRepository, h *MockHasher) {
				users.On("FindByEmail", mock.Anything, "ada@example.com").Return(verifiedUser(), nil)
				h.On("Verify", "stored-hash", "password123").Return(true)
				sessions.On("Create", mock.Anything, "u-1", "curl/8.0").
					Return(&model.Session{ID: "s-1", UserID: "u-1", Valid: true}, nil)
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "password123",
			setupMock: func(users *MockUserRepository, _ *MockSessionRepository, _ *MockHasher) {
				users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, apperrors.ErrNotFound)
			},
			expectedError: apperrors.ErrInvalidCredential,
		},
		{
			name:     "wrong password",
			email:    "ada@example.com",
			password: "wrong",
			setupMock: func(users *MockUserRepository, _ *MockSessionRepository, h *MockHasher) {
				users.On("FindByEmail", mock.Anything, "ada@example.com").Return(verifiedUser(), nil)
				h.On("Verify", "stored-hash", "wrong").Return(false)
			},
			expectedError: apperrors.ErrInvalidCredential,
		},
		{
			name:     "unverified account",
			email:    "ada@example.com",
			password: "password123",
			setupMock: func(users *MockUserRepository, _ *MockSessionRepository, h *MockHasher) {
				u := verifiedUser()
				u.Verified = false
				users.On("FindByEmail", mock.Anything, "ada@example.com").Return(u, nil)
				h.On("Verify", "stored-hash", "password123").Return(true)
			},
			expectedError: apperrors.ErrAccountNotVerified,
		},
		{
			name:     "unverified account with wrong password",
			email:    "ada@example.com",
			password: "wrong",
			setupMock: func(users *MockUserRepository, _ *MockSessionRepository, h *MockHasher) {
				u := verifiedUser()
				u.Verified = false
				users.On("FindByEmail", mock.Anything, "ada@example.com").Return(u, nil)
				h.On("Verify", "stored-hash", "wrong").Return(false)
			},
			expectedError: apperrors.ErrInvalidCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			sessions := new(MockSessionRepository)
			hasher := new(MockHasher)
			tt.setupMock(users, sessions, hasher)

			jwtService := newTestJWTService(t)
			svc := NewSessionService(users, sessions, hasher, jwtService, logging.Nop())

			res, err := svc.Login(context.Background(), tt.email, tt.password, "curl/8.0")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, res)
				sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "u-1", res.User.ID)
				assert.Equal(t, "s-1", res.Session.ID)

				claims, v := jwtService.VerifyAccessToken(res.AccessToken)
				require.True(t, v.Valid())
				assert.Equal(t, "s-1", claims.SessionID)

				refresh, v := jwtService.VerifyRefreshToken(res.RefreshToken)
				require.True(t, v.Valid())
				assert.Equal(t, "s-1", refresh.SessionID)
				assert.Equal(t, "u-1", refresh.UserID)
			}

			users.AssertExpectations(t)
			sessions.AssertExpectations(t)
			hasher.AssertExpectations(t)
		})
	}
}

func TestSessionService_LoginStoreFailureIsNotCredentialError(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, errors.New("connection reset"))

	svc := NewSessionService(users, new(MockSessionRepository), new(MockHasher), newTestJWTService(t), logging.Nop())
	_, err := svc.Login(context.Background(), "ada@example.com", "pw", "")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredential)
}

func TestSessionService_LoginAbandonsSessionWhenSigningFails(t *testing.T) {
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)
	hasher := new(MockHasher)

	users.On("FindByEmail", mock.Anything, "ada@example.com").Return(verifiedUser(), nil)
	hasher.On("Verify", "stored-hash", "pw").Return(true)
	sessions.On("Create", mock.Anything, "u-1", "").Return(&model.Session{ID: "s-1", UserID: "u-1", Valid: true}, nil)
	sessions.On("UpdateOne", mock.Anything,
		repository.SessionFilter{ID: "s-1"},
		repository.SessionPatch{Valid: repository.Bool(false)},
	).Return(int64(1), nil)

	svc := NewSessionService(users, sessions, hasher, verifierOnly(t), logging.Nop())
	res, err := svc.Login(context.Background(), "ada@example.com", "pw", "")

	assert.Error(t, err)
	assert.Nil(t, res)
	sessions.AssertExpectations(t)
}

func TestSessionService_Refresh(t *testing.T) {
	jwtService := newTestJWTService(t)

	validToken, err := jwtService.GenerateRefreshToken("u-1", "s-1")
	require.NoError(t, err)
	expiredToken, err := jwtService.Sign(&auth.RefreshClaims{SessionID: "s-1", UserID: "u-1"}, auth.KeyRoleRefresh, -time.Minute)
	require.NoError(t, err)
	accessToken, err := jwtService.GenerateAccessToken(verifiedUser().Public(), "s-1")
	require.NoError(t, err)

	tests := []struct {
		name          string
		token         string
		setupMock     func(*MockUserRepository, *MockSessionRepository)
		expectedError error
	}{
		{
			name:          "missing token",
			token:         "",
			setupMock:     func(*MockUserRepository, *MockSessionRepository) {},
			expectedError: apperrors.ErrUnauthenticated,
		},
		{
			name:          "garbage token",
			token:         "not-a-jwt",
			setupMock:     func(*MockUserRepository, *MockSessionRepository) {},
			expectedError: apperrors.ErrUnauthenticated,
		},
		{
			name:          "expired token",
			token:         expiredToken,
			setupMock:     func(*MockUserRepository, *MockSessionRepository) {},
			expectedError: apperrors.ErrUnauthenticated,
		},
		{
			name:          "access token used as refresh token",
			token:         accessToken,
			setupMock:     func(*MockUserRepository, *MockSessionRepository) {},
			expectedError: apperrors.ErrUnauthenticated,
		},
		{
			name:  "session missing",
			token: validToken,
			setupMock: func(_ *MockUserRepository, sessions *MockSessionRepository) {
				sessions.On("FindByID", mock.Anything, "s-1").Return(nil, apperrors.ErrNotFound)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:  "session invalidated",
			token: validToken,
			setupMock: func(_ *MockUserRepository, sessions *MockSessionRepository) {
				sessions.On("FindByID", mock.Anything, "s-1").Return(&model.Session{ID: "s-1", UserID: "u-1", Valid: false}, nil)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:  "user deleted",
			token: validToken,
			setupMock: func(users *MockUserRepository, sessions *MockSessionRepository) {
				sessions.On("FindByID", mock.Anything, "s-1").Return(&model.Session{ID: "s-1", UserID: "u-1", Valid: true}, nil)
				users.On("FindByID", mock.Anything, "u-1").Return(nil, apperrors.ErrNotFound)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:  "valid session",
			token: validToken,
			setupMock: func(users *MockUserRepository, sessions *MockSessionRepository) {
				sessions.On("FindByID", mock.Anything, "s-1").Return(&model.Session{ID: "s-1", UserID: "u-1", Valid: true}, nil)
				users.On("FindByID", mock.Anything, "u-1").Return(verifiedUser(), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			sessions := new(MockSessionRepository)
			tt.setupMock(users, sessions)

			svc := NewSessionService(users, sessions, new(MockHasher), jwtService, logging.Nop())
			token, err := svc.Refresh(context.Background(), tt.token)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				claims, v := jwtService.VerifyAccessToken(token)
				require.True(t, v.Valid())
				assert.Equal(t, "s-1", claims.SessionID)
				assert.Equal(t, "u-1", claims.User.ID)
			}

			users.AssertExpectations(t)
			sessions.AssertExpectations(t)
		})
	}
}

func TestSessionService_Logout(t *testing.T) {
	sessions := new(MockSessionRepository)
	sessions.On("UpdateOne", mock.Anything,
		repository.SessionFilter{ID: "s-1"},
		repository.SessionPatch{Valid: repository.Bool(false)},
	).Return(int64(1), nil)
	sessions.On("UpdateOne", mock.Anything,
		repository.SessionFilter{ID: "gone"},
		repository.SessionPatch{Valid: repository.Bool(false)},
	).Return(int64(0), nil)

	svc := NewSessionService(new(MockUserRepository), sessions, new(MockHasher), newTestJWTService(t), logging.Nop())
	ctx := context.Background()

	ok, err := svc.Logout(ctx, nil)
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Logout(ctx, &auth.Identity{UserID: "u-1", SessionID: "s-1"})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Logout(ctx, &auth.Identity{UserID: "u-1", SessionID: "gone"})
	assert.NoError(t, err)
	assert.False(t, ok)

	sessions.AssertExpectations(t)
}

func TestSessionService_ListSessions(t *testing.T) {
	sessions := new(MockSessionRepository)
	sessions.On("Find", mock.Anything, repository.SessionFilter{UserID: "u-1", Valid: repository.Bool(true)}).
		Return([]model.Session{{ID: "s-1", UserID: "u-1", Valid: true}}, nil)

	svc := NewSessionService(new(MockUserRepository), sessions, new(MockHasher), newTestJWTService(t), logging.Nop())
	got, err := svc.ListSessions(context.Background(), "u-1")

	require.NoError(t, err)
	assert.Len(t, got, 1)
	sessions.AssertExpectations(t)
}
