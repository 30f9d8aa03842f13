package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bugscape/internal/model"
)

const (
	// DefaultAccessTokenTTL is the lifetime of access tokens when none is configured.
	DefaultAccessTokenTTL = 15 * time.Minute
	// DefaultRefreshTokenTTL is the lifetime of refresh tokens when none is configured.
	DefaultRefreshTokenTTL = 365 * 24 * time.Hour
)

// KeyRole selects which key pair signs or verifies a token.
type KeyRole int

const (
	KeyRoleAccess KeyRole = iota
	KeyRoleRefresh
)

func (r KeyRole) String() string {
	switch r {
	case KeyRoleAccess:
		return "access"
	case KeyRoleRefresh:
		return "refresh"
	default:
		return fmt.Sprintf("KeyRole(%d)", int(r))
	}
}

// Status is the outcome of verifying a token.
type Status int

const (
	StatusInvalid Status = iota
	StatusValid
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusExpired:
		return "expired"
	default:
		return "invalid"
	}
}

// Verification is the single result of Verify. Err carries the parser error
// for anything other than StatusValid.
type Verification struct {
	Status Status
	Err    error
}

func (v Verification) Valid() bool   { return v.Status == StatusValid }
func (v Verification) Expired() bool { return v.Status == StatusExpired }

var (
	ErrUnknownKeyRole = errors.New("unknown key role")
	ErrNoSigningKey   = errors.New("no signing key for role")
)

// Claims is implemented by the token payloads this service issues.
type Claims interface {
	jwt.Claims
	registered() *jwt.RegisteredClaims
}

// AccessClaims is the payload of an access token: a redacted snapshot of
// the user plus the session that minted it.
type AccessClaims struct {
	User      model.PublicUser `json:"user"`
	SessionID string           `json:"sessionId"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) registered() *jwt.RegisteredClaims { return &c.RegisteredClaims }

// RefreshClaims is the payload of a refresh token.
type RefreshClaims struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	jwt.RegisteredClaims
}

func (c *RefreshClaims) registered() *jwt.RegisteredClaims { return &c.RegisteredClaims }

// JWTService signs and verifies RS256 tokens with one key pair per role.
type JWTService struct {
	keys       map[KeyRole]KeyPair
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTService creates a JWT service. Zero TTLs fall back to the defaults.
func NewJWTService(access, refresh KeyPair, accessTTL, refreshTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &JWTService{
		keys: map[KeyRole]KeyPair{
			KeyRoleAccess:  access,
			KeyRoleRefresh: refresh,
		},
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *JWTService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *JWTService) RefreshTTL() time.Duration { return s.refreshTTL }

// Sign stamps iat and exp onto claims and signs them with the role's private key.
func (s *JWTService) Sign(claims Claims, role KeyRole, expiresIn time.Duration) (string, error) {
	pair, ok := s.keys[role]
	if !ok {
		return "", ErrUnknownKeyRole
	}
	if pair.Private == nil {
		return "", fmt.Errorf("%w %s", ErrNoSigningKey, role)
	}

	now := s.now()
	rc := claims.registered()
	rc.IssuedAt = jwt.NewNumericDate(now)
	rc.ExpiresAt = jwt.NewNumericDate(now.Add(expiresIn))

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(pair.Private)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", role, err)
	}
	return signed, nil
}

// Verify parses tokenString into claims using the role's public key.
// The signature is checked before expiry, so StatusExpired is only
// reported for tokens this service actually issued.
func (s *JWTService) Verify(tokenString string, role KeyRole, claims Claims) Verification {
	pair, ok := s.keys[role]
	if !ok || pair.Public == nil {
		return Verification{Status: StatusInvalid, Err: ErrUnknownKeyRole}
	}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return pair.Public, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
		return Verification{Status: StatusValid}
	case errors.Is(err, jwt.ErrTokenExpired):
		return Verification{Status: StatusExpired, Err: err}
	default:
		return Verification{Status: StatusInvalid, Err: err}
	}
}

// GenerateAccessToken mints an access token for user bound to sessionID.
func (s *JWTService) GenerateAccessToken(user model.PublicUser, sessionID string) (string, error) {
	claims := &AccessClaims{
		User:             user,
		SessionID:        sessionID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID},
	}
	return s.Sign(claims, KeyRoleAccess, s.accessTTL)
}

// GenerateRefreshToken mints a refresh token for the session.
func (s *JWTService) GenerateRefreshToken(userID, sessionID string) (string, error) {
	claims := &RefreshClaims{
		SessionID:        sessionID,
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}
	return s.Sign(claims, KeyRoleRefresh, s.refreshTTL)
}

// VerifyAccessToken verifies an access token and returns its claims.
func (s *JWTService) VerifyAccessToken(tokenString string) (*AccessClaims, Verification) {
	claims := &AccessClaims{}
	v := s.Verify(tokenString, KeyRoleAccess, claims)
	if !v.Valid() {
		return nil, v
	}
	return claims, v
}

// VerifyRefreshToken verifies a refresh token and returns its claims.
func (s *JWTService) VerifyRefreshToken(tokenString string) (*RefreshClaims, Verification) {
	claims := &RefreshClaims{}
	v := s.Verify(tokenString, KeyRoleRefresh, claims)
	if !v.Valid() {
		return nil, v
	}
	return claims, v
}
