package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bugscape/internal/errors"
	"bugscape/internal/logging"
)

func ok(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

func callFrom(t *testing.T, e *echo.Echo, h echo.HandlerFunc, ip string) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/session", nil)
	req.RemoteAddr = ip + ":5000"
	return h(e.NewContext(req, httptest.NewRecorder()))
}

func TestRateLimit(t *testing.T) {
	e := echo.New()
	h := RateLimit(NewMemoryCounter(), RateLimitConfig{
		Limit:     5,
		Window:    time.Minute,
		KeyPrefix: "login:",
		Message:   MsgTooManyLogins,
	}, logging.Nop())(ok)

	for i := 0; i < 5; i++ {
		require.NoError(t, callFrom(t, e, h, "10.0.0.1"))
	}

	err := callFrom(t, e, h, "10.0.0.1")
	var httpErr *apperrors.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, MsgTooManyLogins, httpErr.Message)

	// other clients have their own budget
	assert.NoError(t, callFrom(t, e, h, "10.0.0.2"))
}

type brokenCounter struct{}

func (brokenCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	e := echo.New()
	h := RateLimit(brokenCounter{}, RateLimitConfig{Limit: 1, Window: time.Minute}, logging.Nop())(ok)

	for i := 0; i < 3; i++ {
		assert.NoError(t, callFrom(t, e, h, "10.0.0.1"))
	}
}

func TestMemoryCounter_WindowResets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := NewMemoryCounter()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := m.Incr(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	now = now.Add(time.Minute)
	n, err := m.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
