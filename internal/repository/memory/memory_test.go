package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bugscape/internal/errors"
	"bugscape/internal/model"
	"bugscape/internal/repository"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	ada := &model.User{Email: "ada@example.com", Roles: []model.RoleGrant{{TeamID: "t-1", Role: model.RoleAdmin}}}
	require.NoError(t, repo.Create(ctx, ada))
	require.NotEmpty(t, ada.ID)

	err := repo.Create(ctx, &model.User{Email: "ada@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCredential)

	got, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, got.ID)

	// returned values are copies
	got.Roles[0].Role = model.RoleTester
	again, err := repo.FindByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, again.Roles[0].Role)

	bob := &model.User{Email: "bob@example.com"}
	require.NoError(t, repo.Create(ctx, bob))

	bob.Email = "ada@example.com"
	assert.ErrorIs(t, repo.Save(ctx, bob), apperrors.ErrDuplicateCredential)

	bob.Email = "robert@example.com"
	require.NoError(t, repo.Save(ctx, bob))
	_, err = repo.FindByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, repo.Delete(ctx, bob.ID))
	assert.ErrorIs(t, repo.Delete(ctx, bob.ID), apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.Save(ctx, bob), apperrors.ErrNotFound)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()

	a, err := repo.Create(ctx, "u-1", "agent-a")
	require.NoError(t, err)
	b, err := repo.Create(ctx, "u-1", "agent-b")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.Valid)

	n, err := repo.UpdateOne(ctx, repository.SessionFilter{ID: a.ID}, repository.SessionPatch{Valid: repository.Bool(false)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	valid, err := repo.Find(ctx, repository.SessionFilter{UserID: "u-1", Valid: repository.Bool(true)})
	require.NoError(t, err)
	require.Len(t, valid, 1)
	assert.Equal(t, b.ID, valid[0].ID)

	n, err = repo.UpdateOne(ctx, repository.SessionFilter{ID: "missing"}, repository.SessionPatch{Valid: repository.Bool(false)})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.UpdateOne(ctx, repository.SessionFilter{}, repository.SessionPatch{})
	assert.ErrorIs(t, err, repository.ErrEmptyFilter)

	n, err = repo.DeleteOne(ctx, repository.SessionFilter{ID: b.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Create(ctx, "u-1", "agent")
		}()
	}
	wg.Wait()

	all, err := repo.Find(ctx, repository.SessionFilter{UserID: "u-1"})
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
