package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/daysuntil/server/internal/errors"
)

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(RateLimitConfig{RPS: 0.001, Burst: 1})
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	}, RateLimit(rl, func(c echo.Context) string { return c.QueryParam("k") }))

	do := func(key string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping?k="+key, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, do("a").Code)

	rec := do("a")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.ErrCodeRateLimitExceeded, body.Code)

	assert.Equal(t, http.StatusOK, do("b").Code)
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(AccessLog(logger))
	e.GET("/ok", func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderXRequestID, "req-1")
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "boom")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http request", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "/ok", line["path"])
	assert.EqualValues(t, http.StatusNoContent, line["status"])

	buf.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ERROR", line["level"])
}
