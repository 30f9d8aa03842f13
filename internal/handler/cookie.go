package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RefreshCookieName is the cookie that carries the refresh token.
const RefreshCookieName = "refreshToken"

// CookieConfig controls the refresh token cookie.
type CookieConfig struct {
	Secure bool
	Domain string
	MaxAge time.Duration
}

func (cc CookieConfig) set(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		Domain:   cc.Domain,
		MaxAge:   int(cc.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

func (cc CookieConfig) clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cc.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

func refreshCookie(c echo.Context) string {
	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
