package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/daysuntil/plugin/ai/timeout"
	"github.com/hrygo/daysuntil/server/internal/errors"
	"github.com/hrygo/daysuntil/server/internal/observability"
	"github.com/hrygo/daysuntil/server/middleware"
	"github.com/hrygo/daysuntil/server/service/bot"
)

// handleMessages runs one bot turn. A failed turn is logged and answered
// with the apology reply, never with an error status.
func (s *APIV1Service) handleMessages(c echo.Context) error {
	var activity bot.Activity
	if err := json.NewDecoder(c.Request().Body).Decode(&activity); err != nil {
		return middleware.WriteError(c, http.StatusBadRequest, errors.InvalidArgument("malformed activity"))
	}

	if s.Limiter != nil && !s.Limiter.Allow(messageRateKey(c, activity)) {
		return middleware.WriteError(c, http.StatusTooManyRequests, errors.RateLimitExceeded("too many messages"))
	}

	reqCtx := observability.NewRequestContextWithID(s.Logger,
		c.Response().Header().Get(echo.HeaderXRequestID),
		activity.Conversation.ID, activity.ChannelID)
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout.TurnTimeout)
	defer cancel()
	ctx = observability.WithRequestContext(ctx, reqCtx)

	reply, err := s.Bot.OnTurn(ctx, activity)
	if err != nil {
		reqCtx.Error("turn failed", err,
			slog.String(observability.LogFieldErrorCode, string(errors.GetCodeFromError(err, errors.ErrCodeServiceUnavailable))),
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
		reply = bot.ErrorReply(activity)
	}
	if reply == nil {
		return c.NoContent(http.StatusNoContent)
	}

	reqCtx.Debug("turn complete",
		slog.Int(observability.LogFieldMessageLen, len(activity.Text)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return c.JSON(http.StatusOK, reply)
}
