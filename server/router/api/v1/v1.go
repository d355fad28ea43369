// Package v1 exposes the bot over HTTP.
package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/daysuntil/server/internal/observability"
	"github.com/hrygo/daysuntil/server/middleware"
	"github.com/hrygo/daysuntil/server/service/bot"
	"github.com/hrygo/daysuntil/server/service/countdown"
)

// EventLister lists the supported named events.
type EventLister interface {
	Names() []string
}

// APIV1Service holds the handlers of the HTTP API.
type APIV1Service struct {
	Bot       *bot.Bot
	Countdown *countdown.Service
	Events    EventLister

	// Metrics is served at /api/v1/metrics when set.
	Metrics *observability.Metrics
	// Limiter throttles /api/messages per conversation and /api/v1/resolve
	// per client IP when set. Each route keys its own buckets.
	Limiter *middleware.RateLimiter

	Clock    func() time.Time
	Location *time.Location
	Logger   *slog.Logger
}

// NewAPIV1Service creates the API service.
func NewAPIV1Service(b *bot.Bot, svc *countdown.Service, events EventLister) *APIV1Service {
	return &APIV1Service{
		Bot:       b,
		Countdown: svc,
		Events:    events,
		Clock:     time.Now,
		Location:  time.Local,
		Logger:    slog.Default(),
	}
}

// Register mounts the API routes on e.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.POST("/api/messages", s.handleMessages)
	e.GET("/healthz", s.handleHealth)

	g := e.Group("/api/v1")
	g.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	if s.Limiter != nil {
		g.POST("/resolve", s.handleResolve, middleware.RateLimit(s.Limiter, resolveRateKey))
	} else {
		g.POST("/resolve", s.handleResolve)
	}
	g.GET("/events", s.handleEvents)
	g.GET("/metrics", s.handleMetrics)
}

var resolveRateKey = middleware.KeyWithPrefix("resolve:ip:", middleware.KeyByIP)

// messageRateKey keys a turn by conversation, or by client IP when the
// activity carries no conversation.
func messageRateKey(c echo.Context, activity bot.Activity) string {
	if id := activity.Conversation.ID; id != "" {
		return "messages:conv:" + id
	}
	return "messages:ip:" + c.RealIP()
}

func (s *APIV1Service) now() time.Time {
	now := s.Clock()
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return now
}

func (s *APIV1Service) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
