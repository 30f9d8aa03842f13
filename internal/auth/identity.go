package auth

import (
	"context"

	"bugscape/internal/model"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID    string
	SessionID string
	User      model.PublicUser
}

// IdentityFromClaims builds an Identity from verified access claims.
func IdentityFromClaims(c *AccessClaims) *Identity {
	userID := c.User.ID
	if userID == "" {
		userID = c.Subject
	}
	return &Identity{UserID: userID, SessionID: c.SessionID, User: c.User}
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached to ctx, if any.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
