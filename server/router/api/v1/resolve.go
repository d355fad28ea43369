package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/daysuntil/server/internal/errors"
	"github.com/hrygo/daysuntil/server/middleware"
	"github.com/hrygo/daysuntil/server/service/countdown"
)

// ResolveRequest asks for the reply to a single entity.
type ResolveRequest struct {
	Kind string     `json:"kind"`
	Text string     `json:"text"`
	Now  *time.Time `json:"now,omitempty"`
}

// ResolveResponse is the answer together with the entity it was built from.
type ResolveResponse struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
	countdown.Answer
}

func (s *APIV1Service) handleResolve(c echo.Context) error {
	var req ResolveRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return middleware.WriteError(c, http.StatusBadRequest, errors.InvalidArgument("malformed request"))
	}

	now := s.now()
	if req.Now != nil {
		now = *req.Now
	}

	var entity *countdown.Entity
	if req.Kind != "" || req.Text != "" {
		entity = &countdown.Entity{Kind: countdown.ParseKind(req.Kind), Text: req.Text}
	}
	answer := s.Countdown.Answer(entity, now)

	kind := countdown.KindOther
	if entity != nil {
		kind = entity.Kind
	}
	return c.JSON(http.StatusOK, ResolveResponse{
		Kind:   kind.String(),
		Text:   req.Text,
		Answer: answer,
	})
}

func (s *APIV1Service) handleEvents(c echo.Context) error {
	names := []string{}
	if s.Events != nil {
		names = s.Events.Names()
	}
	return c.JSON(http.StatusOK, map[string][]string{"events": names})
}

func (s *APIV1Service) handleMetrics(c echo.Context) error {
	if s.Metrics == nil {
		return middleware.WriteError(c, http.StatusServiceUnavailable, errors.ServiceUnavailable("metrics are disabled"))
	}
	return c.JSON(http.StatusOK, s.Metrics.Snapshot())
}
