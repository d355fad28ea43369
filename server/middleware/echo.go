package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/daysuntil/server/internal/errors"
	"github.com/hrygo/daysuntil/server/internal/observability"
)

// KeyFunc extracts the rate limit key from a request.
type KeyFunc func(c echo.Context) string

// KeyByIP keys requests by client IP.
func KeyByIP(c echo.Context) string {
	return c.RealIP()
}

// KeyWithPrefix namespaces the keys produced by key, so routes sharing a
// RateLimiter keep separate buckets.
func KeyWithPrefix(prefix string, key KeyFunc) KeyFunc {
	return func(c echo.Context) string {
		return prefix + key(c)
	}
}

// ErrorBody is the JSON body of an error response.
type ErrorBody struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// WriteError writes err as a JSON error body with status.
func WriteError(c echo.Context, status int, err *errors.BotError) error {
	return c.JSON(status, ErrorBody{Code: err.Code, Message: err.Message})
}

// RateLimit rejects requests over the limit with 429.
func RateLimit(rl *RateLimiter, key KeyFunc) echo.MiddlewareFunc {
	if key == nil {
		key = KeyByIP
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(key(c)) {
				return WriteError(c, http.StatusTooManyRequests, errors.RateLimitExceeded("too many requests"))
			}
			return next(c)
		}
	}
}

// AccessLog logs one line per request, tagged with the request ID set by
// the request ID middleware.
func AccessLog(logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			level := slog.LevelInfo
			if res.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(req.Context(), level, "http request",
				slog.String(observability.LogFieldRequestID, res.Header().Get(echo.HeaderXRequestID)),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Int64(observability.LogFieldDuration, time.Since(start).Milliseconds()),
				slog.String("remote_ip", c.RealIP()),
			)
			return nil
		}
	}
}
