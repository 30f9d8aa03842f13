package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"bugscape/internal/model"
	"bugscape/internal/service"
)

// UserHandler handles account registration and self-service.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"required,min=2,max=30"`
	LastName        string `json:"lastName" validate:"required,min=2,max=30"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// ForgottenPasswordRequest asks for a password reset code.
type ForgottenPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest sets a new password.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// UpdateUserRequest is a partial update of the caller's account.
type UpdateUserRequest struct {
	FirstName       string `json:"firstName" validate:"omitempty,min=2,max=30"`
	LastName        string `json:"lastName" validate:"omitempty,min=2,max=30"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password" validate:"omitempty,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User model.PublicUser `json:"user"`
}

const msgForgottenPassword = "If an account with that email exists, you will receive a password reset link."

// Register godoc
// @Summary Register
// @Description Creates an unverified account and sends its verification code.
// @Tags user
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account details"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.svc.Register(c.Request().Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, UserResponse{User: user.Public()})
}

// Verify godoc
// @Summary Verify email
// @Tags user
// @Produce json
// @Param id path string true "User ID"
// @Param verificationCode path string true "Verification code"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/verify/{id}/{verificationCode} [get]
func (h *UserHandler) Verify(c echo.Context) error {
	if err := h.svc.Verify(c.Request().Context(), c.Param("id"), c.Param("verificationCode")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "User successfully verified."})
}

// ForgottenPassword godoc
// @Summary Request a password reset
// @Tags user
// @Accept json
// @Produce json
// @Param request body ForgottenPasswordRequest true "Account email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /user/forgottenpassword [post]
func (h *UserHandler) ForgottenPassword(c echo.Context) error {
	var req ForgottenPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: msgForgottenPassword})
}

// ResetPassword godoc
// @Summary Reset password
// @Tags user
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param passwordResetCode path string true "Password reset code"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /user/resetpassword/{id}/{passwordResetCode} [post]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	err := h.svc.ResetPassword(c.Request().Context(), c.Param("id"), c.Param("passwordResetCode"), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Successfully updated user password."})
}

// Me godoc
// @Summary Current user
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Get(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserResponse{User: *user})
}

// List godoc
// @Summary List users
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.PublicUser
// @Failure 403 {object} errors.ErrorResponse
// @Router /user [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Update godoc
// @Summary Update own account
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /user [patch]
func (h *UserHandler) Update(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.svc.Update(c.Request().Context(), identity.UserID, service.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Account for %s updated.", user.Email)})
}

// Delete godoc
// @Summary Delete own account
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /user [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Delete(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Account for %s with ID %s deleted.", user.Email, user.ID),
	})
}
