// Package server composes the bot and runs its HTTP endpoint.
package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/hrygo/daysuntil/internal/profile"
	"github.com/hrygo/daysuntil/plugin/ai/aitime"
	"github.com/hrygo/daysuntil/plugin/calendar"
	"github.com/hrygo/daysuntil/server/internal/observability"
	"github.com/hrygo/daysuntil/server/middleware"
	apiv1 "github.com/hrygo/daysuntil/server/router/api/v1"
	"github.com/hrygo/daysuntil/server/service/bot"
	"github.com/hrygo/daysuntil/server/service/countdown"
)

// Server wires the API onto an echo instance.
type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
	logger     *slog.Logger

	cron    *cron.Cron
	cancel  context.CancelFunc
	closers []func()
}

// NewServer builds the bot described by p: calendar, date pipeline,
// recognizer, rate limiter and HTTP API.
func NewServer(ctx context.Context, p *profile.Profile, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := p.Location()
	if err != nil {
		return nil, err
	}

	var calendarOpts []calendar.Option
	if p.EventRollover {
		calendarOpts = append(calendarOpts, calendar.WithRollover())
	}
	registry := calendar.NewRegistry(calendarOpts...)
	if p.EventsFile != "" {
		if _, err := registry.LoadFile(p.EventsFile); err != nil {
			return nil, err
		}
	}

	dates, err := aitime.NewEnglishService(p.Culture)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create date service")
	}

	metrics := observability.NewMetrics(1000)
	countdownService := countdown.NewService(registry, dates,
		countdown.WithRecorder(observability.Tee(observability.NewSlogRecorder(logger), metrics)))

	recognizer, closeRecognizer, err := newRecognizer(ctx, p, registry, metrics)
	if err != nil {
		return nil, err
	}

	b := bot.New(recognizer, countdownService,
		bot.WithLocation(loc),
		bot.WithCulture(p.Culture),
		bot.WithMetrics(metrics),
		bot.WithLogger(logger))

	api := apiv1.NewAPIV1Service(b, countdownService, registry)
	api.Metrics = metrics
	api.Limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
		RPS:   p.RateLimitRPS,
		Burst: p.RateLimitBurst,
	})
	api.Location = loc
	api.Logger = logger

	s := newServer(p, api, logger)
	s.closers = append(s.closers, closeRecognizer)

	if p.EventsFile != "" && p.EventsReload != "" {
		c, err := scheduleReload(registry, p.EventsFile, p.EventsReload, logger)
		if err != nil {
			closeRecognizer()
			return nil, err
		}
		s.cron = c
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go api.Limiter.Run(bgCtx, time.Minute)

	logger.Info("bot composed",
		"provider", recognizer.Provider(),
		"events", len(registry.Names()),
		"timezone", loc.String())
	return s, nil
}

// newServer mounts api on a fresh echo instance.
func newServer(p *profile.Profile, api *apiv1.APIV1Service, logger *slog.Logger) *Server {
	e := echo.New()
	e.Debug = p.IsDev()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered", "path", c.Path(), "error", err, "stack", string(stack))
			return err
		},
	}))
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.AccessLog(logger))

	api.Register(e)

	return &Server{Profile: p, echoServer: e, logger: logger, cancel: func() {}}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on the profile address and serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.Profile.ListenAddr())
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	s.echoServer.Listener = listener
	if s.cron != nil {
		s.cron.Start()
	}

	s.logger.Info("bot server listening",
		"addr", listener.Addr().String(),
		"version", s.Profile.Version,
		"mode", s.Profile.Mode)

	if err := s.echoServer.Start(""); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server stopped")
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// background work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down bot server")
	err := s.echoServer.Shutdown(ctx)

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.cancel()
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	return err
}

// scheduleReload reloads the events file on spec. A failed reload keeps the
// previous events.
func scheduleReload(registry *calendar.Registry, path, spec string, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := registry.ReloadFile(path); err != nil {
			logger.Error("failed to reload calendar events", "path", path, "error", err)
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "invalid events reload spec %q", spec)
	}
	return c, nil
}
