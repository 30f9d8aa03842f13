package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"bugscape/internal/model"
	"bugscape/internal/repository"
)

type roleDoc struct {
	TeamID string `bson:"teamId"`
	Role   string `bson:"role"`
}

type userDoc struct {
	ID                string    `bson:"_id"`
	Email             string    `bson:"email"`
	FirstName         string    `bson:"firstName"`
	LastName          string    `bson:"lastName"`
	PasswordHash      string    `bson:"passwordHash"`
	Verified          bool      `bson:"verified"`
	VerificationCode  string    `bson:"verificationCode"`
	PasswordResetCode *string   `bson:"passwordResetCode"`
	Roles             []roleDoc `bson:"roles"`
	CreatedAt         time.Time `bson:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt"`
}

type sessionDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Valid     bool      `bson:"valid"`
	UserAgent string    `bson:"userAgent"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func userToDoc(u *model.User) userDoc {
	roles := make([]roleDoc, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, roleDoc{TeamID: r.TeamID, Role: string(r.Role)})
	}
	return userDoc{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		PasswordHash:      u.PasswordHash,
		Verified:          u.Verified,
		VerificationCode:  u.VerificationCode,
		PasswordResetCode: u.PasswordResetCode,
		Roles:             roles,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (d userDoc) toModel() *model.User {
	var roles []model.RoleGrant
	for _, r := range d.Roles {
		roles = append(roles, model.RoleGrant{TeamID: r.TeamID, Role: model.Role(r.Role)})
	}
	return &model.User{
		ID:                d.ID,
		Email:             d.Email,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		PasswordHash:      d.PasswordHash,
		Verified:          d.Verified,
		VerificationCode:  d.VerificationCode,
		PasswordResetCode: d.PasswordResetCode,
		Roles:             roles,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (d sessionDoc) toModel() model.Session {
	return model.Session{
		ID:        d.ID,
		UserID:    d.UserID,
		Valid:     d.Valid,
		UserAgent: d.UserAgent,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func sessionFilter(f repository.SessionFilter) bson.D {
	filter := bson.D{}
	if f.ID != "" {
		filter = append(filter, bson.E{Key: "_id", Value: f.ID})
	}
	if f.UserID != "" {
		filter = append(filter, bson.E{Key: "userId", Value: f.UserID})
	}
	if f.Valid != nil {
		filter = append(filter, bson.E{Key: "valid", Value: *f.Valid})
	}
	return filter
}

// sessionUpdate always bumps updatedAt so a patch is never an empty $set.
func sessionUpdate(p repository.SessionPatch, now time.Time) bson.D {
	set := bson.D{{Key: "updatedAt", Value: now}}
	if p.Valid != nil {
		set = append(set, bson.E{Key: "valid", Value: *p.Valid})
	}
	return bson.D{{Key: "$set", Value: set}}
}
