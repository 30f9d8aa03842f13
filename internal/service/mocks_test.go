package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bugscape/internal/auth"
	"bugscape/internal/model"
	"bugscape/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, userID, userAgent string) (*model.Session, error) {
	args := m.Called(ctx, userID, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepository) Find(ctx context.Context, filter repository.SessionFilter) ([]model.Session, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Session), args.Error(1)
}

func (m *MockSessionRepository) UpdateOne(ctx context.Context, filter repository.SessionFilter, patch repository.SessionPatch) (int64, error) {
	args := m.Called(ctx, filter, patch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) DeleteOne(ctx context.Context, filter repository.SessionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockHasher is a mock implementation of auth.PasswordHasher.
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(hash, plaintext string) bool {
	args := m.Called(hash, plaintext)
	return args.Bool(0)
}

// MockMailer is a mock implementation of Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, mail Mail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

// MockWorkReferences is a mock implementation of WorkReferences.
type MockWorkReferences struct {
	mock.Mock
}

func (m *MockWorkReferences) HasAssignedWork(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// mapCache is an in-process Cache.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

var (
	keysOnce   sync.Once
	accessKey  *rsa.PrivateKey
	refreshKey *rsa.PrivateKey
	keysErr    error
)

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	keysOnce.Do(func() {
		accessKey, keysErr = rsa.GenerateKey(rand.Reader, 2048)
		if keysErr != nil {
			return
		}
		refreshKey, keysErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	require.NoError(t, keysErr)
	return auth.NewJWTService(
		auth.KeyPair{Private: accessKey, Public: &accessKey.PublicKey},
		auth.KeyPair{Private: refreshKey, Public: &refreshKey.PublicKey},
		time.Minute, time.Hour,
	)
}

// verifierOnly cannot sign, so every Generate call fails.
func verifierOnly(t *testing.T) *auth.JWTService {
	newTestJWTService(t)
	return auth.NewJWTService(
		auth.KeyPair{Public: &accessKey.PublicKey},
		auth.KeyPair{Public: &refreshKey.PublicKey},
		time.Minute, time.Hour,
	)
}
