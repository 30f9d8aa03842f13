package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	_, ok = IdentityFrom(WithIdentity(context.Background(), nil))
	assert.False(t, ok)

	id := IdentityFromClaims(&AccessClaims{User: testUser(), SessionID: "session-1"})
	got, ok := IdentityFrom(WithIdentity(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, testUser().ID, got.UserID)
	assert.Equal(t, "session-1", got.SessionID)
}

func TestIdentityFromClaims_FallsBackToSubject(t *testing.T) {
	id := IdentityFromClaims(&AccessClaims{
		SessionID:        "session-1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-9"},
	})
	assert.Equal(t, "user-9", id.UserID)
}
