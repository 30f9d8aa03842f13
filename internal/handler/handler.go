// Package handler implements the HTTP endpoints on top of the services.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"bugscape/internal/auth"
	apperrors "bugscape/internal/errors"
)

// MessageResponse is returned by endpoints that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// bindAndValidate decodes the request into req and runs the registered
// validator, turning failures into a 400 with a readable message.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("Invalid request body.")
	}
	if err := c.Validate(req); err != nil {
		return apperrors.Validation(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body."
	}

	fe := verrs[0]
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "You must enter a valid email address."
	case "eqfield":
		return "Passwords do not match."
	case "min":
		if fe.Field() == "Password" {
			return fmt.Sprintf("Password must be a minimum of %s characters.", fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot be longer than %s characters.", label, fe.Param())
	default:
		return label + " is invalid."
	}
}

// fieldLabel turns FirstName into "First name".
func fieldLabel(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// callerIdentity returns the identity attached by the identity middleware.
func callerIdentity(c echo.Context) (*auth.Identity, error) {
	identity, ok := auth.IdentityFrom(c.Request().Context())
	if !ok {
		return nil, apperrors.NewHTTPError(http.StatusForbidden, apperrors.MsgSignInRequired, apperrors.ErrUnauthenticated)
	}
	return identity, nil
}
