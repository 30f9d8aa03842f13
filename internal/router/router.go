package router

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"bugscape/internal/config"
	"bugscape/internal/handler"
	"bugscape/internal/logging"
	"bugscape/internal/middleware"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Config         *config.Config
	Logger         logging.Logger
	Verifier       middleware.TokenVerifier
	LoginCounter   middleware.Counter
	SessionHandler *handler.SessionHandler
	UserHandler    *handler.UserHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = handler.HTTPErrorHandler(d.Logger)
	e.IPExtractor = IPExtractor(d.Config.TrustedProxies, d.Logger)
	e.Validator = NewValidator()

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.Recover())
	e.Use(middleware.Identity(d.Verifier, d.Logger))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	requireAuth := middleware.RequireAuth()
	loginLimiter := middleware.RateLimit(d.LoginCounter, middleware.RateLimitConfig{
		Limit:     d.Config.LoginRateLimit,
		Window:    loginWindow(d.Config),
		KeyPrefix: "ratelimit:login:",
		Message:   middleware.MsgTooManyLogins,
	}, d.Logger)

	session := e.Group("/session")
	session.POST("", d.SessionHandler.Login, loginLimiter)
	session.GET("", d.SessionHandler.List, requireAuth)
	session.DELETE("", d.SessionHandler.Logout)
	session.GET("/refresh", d.SessionHandler.Refresh)
	session.POST("/refresh", d.SessionHandler.Refresh)

	user := e.Group("/user")
	user.POST("", d.UserHandler.Register)
	user.GET("/verify/:id/:verificationCode", d.UserHandler.Verify)
	user.POST("/forgottenpassword", d.UserHandler.ForgottenPassword)
	user.POST("/resetpassword/:id/:passwordResetCode", d.UserHandler.ResetPassword)
	user.GET("/me", d.UserHandler.Me, requireAuth)
	user.GET("", d.UserHandler.List, requireAuth)
	user.PATCH("", d.UserHandler.Update, requireAuth)
	user.DELETE("", d.UserHandler.Delete, requireAuth)
}

// IPExtractor returns the socket address as the client IP unless proxies
// are listed, in which case X-Forwarded-For is honoured only when the
// request arrives from one of them. Invalid CIDRs are skipped.
func IPExtractor(trustedProxies []string, logger logging.Logger) echo.IPExtractor {
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	trusted := 0
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			logger.Warn(context.Background(), "ignoring invalid trusted proxy", "cidr", cidr, "error", err)
			continue
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
		trusted++
	}
	if trusted == 0 {
		return echo.ExtractIPDirect()
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func loginWindow(cfg *config.Config) time.Duration {
	if cfg.LoginRateWindow > 0 {
		return cfg.LoginRateWindow
	}
	return time.Minute
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the validator installed on the echo instance.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
