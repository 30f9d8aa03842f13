// Package middleware holds the echo middleware that resolves callers and
// guards routes.
package middleware

import (
	"fmt"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"bugscape/internal/auth"
	apperrors "bugscape/internal/errors"
	"bugscape/internal/logging"
)

// ClaimsContextKey is where the verified access claims are stored on the
// echo context.
const ClaimsContextKey = "accessClaims"

// TokenVerifier checks access tokens. It is satisfied by *auth.JWTService.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.AccessClaims, auth.Verification)
}

// Identity resolves the Bearer access token, when there is one, into an
// auth.Identity on the request context. It never rejects a request: a
// missing, malformed or expired token simply leaves the request anonymous.
func Identity(verifier TokenVerifier, logger logging.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup:            "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:             ClaimsContextKey,
		ContinueOnIgnoredError: true,
		ParseTokenFunc: func(c echo.Context, token string) (any, error) {
			claims, v := verifier.VerifyAccessToken(token)
			if !v.Valid() {
				return nil, fmt.Errorf("access token %s: %w", v.Status, v.Err)
			}
			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), auth.IdentityFromClaims(claims))))
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
				logger.Debug(c.Request().Context(), "ignoring access token", "error", err)
			}
			return nil
		},
	})
}

// RequireAuth rejects requests that carry no identity.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := auth.IdentityFrom(c.Request().Context()); !ok {
				return apperrors.NewHTTPError(http.StatusForbidden, apperrors.MsgSignInRequired, apperrors.ErrUnauthenticated)
			}
			return next(c)
		}
	}
}
