package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bugscape/internal/auth"
	apperrors "bugscape/internal/errors"
	"bugscape/internal/model"
	"bugscape/internal/service"
)

// SessionHandler handles sign-in, refresh and sign-out.
type SessionHandler struct {
	sessionService service.SessionService
	cookies        CookieConfig
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessionService service.SessionService, cookies CookieConfig) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, cookies: cookies}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest lets clients that cannot send cookies pass the refresh token in the body.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	User        model.PublicUser `json:"user"`
	AccessToken string           `json:"accessToken"`
}

// RefreshResponse carries a new access token.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// SessionsResponse lists the caller's sessions.
type SessionsResponse struct {
	Sessions []model.Session `json:"sessions"`
}

// Login godoc
// @Summary Sign in
// @Description Verifies credentials, opens a session, returns an access token and sets the refreshToken cookie.
// @Tags session
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 201 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /session [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.sessionService.Login(c.Request().Context(), req.Email, req.Password, c.Request().UserAgent())
	if err != nil {
		return err
	}

	h.cookies.set(c, res.RefreshToken)
	return c.JSON(http.StatusCreated, LoginResponse{
		User:        res.User,
		AccessToken: res.AccessToken,
	})
}

// Refresh godoc
// @Summary Refresh the access token
// @Description Exchanges the refreshToken cookie (or body field) for a new access token.
// @Tags session
// @Produce json
// @Param request body RefreshRequest false "Refresh token when no cookie is sent"
// @Success 200 {object} RefreshResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /session/refresh [get]
// @Router /session/refresh [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	token := refreshCookie(c)
	if token == "" && c.Request().Method == http.MethodPost {
		var req RefreshRequest
		if err := c.Bind(&req); err == nil {
			token = req.RefreshToken
		}
	}

	accessToken, err := h.sessionService.Refresh(c.Request().Context(), token)
	if err != nil {
		return apperrors.WithMessage(err, apperrors.MsgRefreshFailed)
	}

	return c.JSON(http.StatusOK, RefreshResponse{AccessToken: accessToken})
}

// Logout godoc
// @Summary Sign out
// @Description Invalidates the caller's session and clears the refreshToken cookie.
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Success 204
// @Failure 500 {object} errors.ErrorResponse
// @Router /session [delete]
func (h *SessionHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	identity, _ := auth.IdentityFrom(ctx)
	hadCookie := refreshCookie(c) != ""

	invalidated, err := h.sessionService.Logout(ctx, identity)
	if err != nil {
		return err
	}

	if !hadCookie && !invalidated {
		return c.NoContent(http.StatusNoContent)
	}

	h.cookies.clear(c)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Successfully logged out."})
}

// List godoc
// @Summary List sessions
// @Description Returns the caller's valid sessions.
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SessionsResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /session [get]
func (h *SessionHandler) List(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}

	sessions, err := h.sessionService.ListSessions(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SessionsResponse{Sessions: sessions})
}
