package mongodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"bugscape/internal/db"
	apperrors "bugscape/internal/errors"
	"bugscape/internal/model"
	"bugscape/internal/repository"
)

func TestTranslateError(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no documents", mongo.ErrNoDocuments, apperrors.ErrNotFound},
		{"wrapped no documents", fmt.Errorf("find: %w", mongo.ErrNoDocuments), apperrors.ErrNotFound},
		{"duplicate key write", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}, apperrors.ErrDuplicateCredential},
		{"duplicate key command", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error"}, apperrors.ErrDuplicateCredential},
		{"other write error", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 121, Message: "document failed validation"}}}, nil},
		{"unrelated", boom, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
				return
			}
			assert.Equal(t, tt.err, got)
			assert.NotErrorIs(t, got, apperrors.ErrNotFound)
			assert.NotErrorIs(t, got, apperrors.ErrDuplicateCredential)
		})
	}
}

func TestSessionRepository_EmptyFilter(t *testing.T) {
	repo := &sessionRepository{}

	_, err := repo.UpdateOne(context.Background(), repository.SessionFilter{}, repository.SessionPatch{Valid: repository.Bool(false)})
	assert.ErrorIs(t, err, repository.ErrEmptyFilter)

	_, err = repo.DeleteOne(context.Background(), repository.SessionFilter{})
	assert.ErrorIs(t, err, repository.ErrEmptyFilter)
}

// testDatabase connects to MONGODB_TEST_URI and returns a throwaway
// database, skipping when no server is configured.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, database, err := db.NewMongo(ctx, uri, "bugscape_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, EnsureIndexes(ctx, database))
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return database
}

func TestUserRepository_Mongo(t *testing.T) {
	database := testDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(database)

	u := &model.User{Email: "ada@example.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	err := repo.Create(ctx, &model.User{Email: "ada@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCredential)

	u.Verified = true
	require.NoError(t, repo.Save(ctx, u))
	got, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, got.Verified)

	// an unchanged document still counts as matched
	require.NoError(t, repo.Save(ctx, got))

	err = repo.Save(ctx, &model.User{ID: "missing", Email: "x@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, u.ID))
	assert.ErrorIs(t, repo.Delete(ctx, u.ID), apperrors.ErrNotFound)
	_, err = repo.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionRepository_Mongo(t *testing.T) {
	database := testDatabase(t)
	ctx := context.Background()
	repo := NewSessionRepository(database)

	s, err := repo.Create(ctx, "u-1", "curl")
	require.NoError(t, err)
	assert.True(t, s.Valid)

	invalidate := repository.SessionPatch{Valid: repository.Bool(false)}

	matched, err := repo.UpdateOne(ctx, repository.SessionFilter{ID: s.ID}, invalidate)
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	// already invalid, still matched
	matched, err = repo.UpdateOne(ctx, repository.SessionFilter{ID: s.ID}, invalidate)
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	matched, err = repo.UpdateOne(ctx, repository.SessionFilter{ID: "missing"}, invalidate)
	require.NoError(t, err)
	assert.Zero(t, matched)

	valid, err := repo.Find(ctx, repository.SessionFilter{UserID: "u-1", Valid: repository.Bool(true)})
	require.NoError(t, err)
	assert.Empty(t, valid)

	deleted, err := repo.DeleteOne(ctx, repository.SessionFilter{ID: s.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(ctx, s.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
