package middleware

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"bugscape/internal/logging"
)

// RequestLogger writes one access log line per request to logger.
func RequestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
				"user_agent", v.UserAgent,
			}
			level := slog.LevelInfo
			if v.Error != nil {
				args = append(args, "error", v.Error.Error())
				level = slog.LevelWarn
			}
			logAt(c.Request().Context(), logger, level, "request", args...)
			return nil
		},
	})
}

func logAt(ctx context.Context, logger logging.Logger, level slog.Level, msg string, args ...any) {
	if level >= slog.LevelWarn {
		logger.Warn(ctx, msg, args...)
		return
	}
	logger.Info(ctx, msg, args...)
}
