package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"bugscape/internal/model"
	"bugscape/internal/repository"
)

func TestUserDocMapping(t *testing.T) {
	code := "reset-1"
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	u := &model.User{
		ID:                "u-1",
		Email:             "ada@example.com",
		FirstName:         "Ada",
		PasswordHash:      "$argon2id$hash",
		Verified:          true,
		PasswordResetCode: &code,
		Roles:             []model.RoleGrant{{TeamID: "t-1", Role: model.RoleManager}},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	raw, err := bson.Marshal(userToDoc(u))
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.Equal(t, "u-1", fields["_id"])
	assert.Equal(t, "$argon2id$hash", fields["passwordHash"])
	assert.Equal(t, "reset-1", fields["passwordResetCode"])

	var doc userDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, u, doc.toModel())
}

func TestSessionFilter(t *testing.T) {
	assert.Equal(t, bson.D{}, sessionFilter(repository.SessionFilter{}))
	assert.Equal(t,
		bson.D{{Key: "_id", Value: "s-1"}, {Key: "userId", Value: "u-1"}, {Key: "valid", Value: true}},
		sessionFilter(repository.SessionFilter{ID: "s-1", UserID: "u-1", Valid: repository.Bool(true)}),
	)
}

func TestSessionUpdate(t *testing.T) {
	now := time.Now()

	assert.Equal(t,
		bson.D{{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}, {Key: "valid", Value: false}}}},
		sessionUpdate(repository.SessionPatch{Valid: repository.Bool(false)}, now),
	)
	assert.Equal(t,
		bson.D{{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}}},
		sessionUpdate(repository.SessionPatch{}, now),
	)
}
