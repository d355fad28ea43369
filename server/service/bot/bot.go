// Package bot handles one conversational turn: recognize the utterance,
// pick the top entity and answer with the number of days until it.
package bot

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/daysuntil/plugin/ai/router"
	"github.com/hrygo/daysuntil/plugin/ai/timeout"
	"github.com/hrygo/daysuntil/server/internal/errors"
	"github.com/hrygo/daysuntil/server/internal/observability"
	"github.com/hrygo/daysuntil/server/service/countdown"
	"github.com/hrygo/daysuntil/server/timezone"
)

// ReplyTurnError is sent when a turn fails.
const ReplyTurnError = "Oops. Something went wrong!"

// Option configures a Bot.
type Option func(*Bot)

// WithClock sets the clock used as the reference instant.
func WithClock(clock func() time.Time) Option {
	return func(b *Bot) {
		b.clock = clock
	}
}

// WithLocation evaluates dates in loc.
func WithLocation(loc *time.Location) Option {
	return func(b *Bot) {
		b.loc = loc
	}
}

// WithCulture sets the culture passed to the recognizer.
func WithCulture(culture string) Option {
	return func(b *Bot) {
		b.culture = culture
	}
}

// WithMetrics counts turns in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// WithLogger sets the logger for turn diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// Bot answers "how many days until" questions.
type Bot struct {
	recognizer router.Recognizer
	countdown  *countdown.Service
	clock      func() time.Time
	loc        *time.Location
	culture    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// New creates a bot.
func New(recognizer router.Recognizer, svc *countdown.Service, opts ...Option) *Bot {
	b := &Bot{
		recognizer: recognizer,
		countdown:  svc,
		clock:      time.Now,
		culture:    "en-us",
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OnTurn handles an inbound activity and returns the reply, or nil when the
// activity needs none.
func (b *Bot) OnTurn(ctx context.Context, activity Activity) (*Activity, error) {
	if activity.Type != ActivityTypeMessage {
		return nil, nil
	}
	if b.metrics != nil {
		b.metrics.RecordTurn()
	}

	text, err := b.reply(ctx, activity.Text, b.locationFor(activity))
	if err != nil {
		if b.metrics != nil {
			b.metrics.RecordTurnFailure()
		}
		return nil, err
	}
	return replyTo(activity, text), nil
}

// Reply answers a single utterance.
func (b *Bot) Reply(ctx context.Context, utterance string) (string, error) {
	return b.reply(ctx, utterance, b.loc)
}

// locationFor prefers the sender's zone over the configured one.
func (b *Bot) locationFor(activity Activity) *time.Location {
	if activity.LocalTimezone == "" {
		return b.loc
	}
	loc, err := timezone.ParseTimezone(activity.LocalTimezone, b.loc)
	if err != nil {
		b.logger.Warn("ignoring activity timezone", "timezone", activity.LocalTimezone, "error", err)
	}
	return loc
}

func (b *Bot) reply(ctx context.Context, utterance string, loc *time.Location) (string, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return countdown.ReplyNotUnderstood, nil
	}
	if len(utterance) > timeout.MaxUtteranceLength {
		return "", errors.InvalidArgument("utterance is too long").
			WithContext("length", len(utterance))
	}

	rec, err := b.recognizer.Recognize(ctx, utterance, b.culture)
	if err != nil {
		return "", classifyRecognitionError(err)
	}

	now := b.clock()
	if loc != nil {
		now = now.In(loc)
	}
	entity := topEntity(rec)
	reply := b.countdown.Resolve(entity, now)

	b.logger.Debug("turn answered",
		"intent", rec.TopIntent,
		"entities", len(rec.Entities),
		"provider", rec.Provider,
		"reply", reply)
	return reply, nil
}

// topEntity returns the entity to answer, or nil when the intent is None or
// no entity was recognized.
func topEntity(rec *router.Recognition) *countdown.Entity {
	if !rec.HasIntent() {
		return nil
	}
	top := rec.TopEntity()
	if top == nil {
		return nil
	}
	return &countdown.Entity{Kind: countdown.KindForType(top.Type), Text: top.Text}
}

func classifyRecognitionError(err error) error {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.Timeout("recognition timed out", err), errors.ErrCodeUpstreamRecognitionFailure, "recognition failed")
	case stderrors.Is(err, context.Canceled):
		return errors.Wrap(errors.ContextCanceled(err), errors.ErrCodeUpstreamRecognitionFailure, "recognition failed")
	default:
		return errors.UpstreamRecognitionFailure(err)
	}
}

func replyTo(in Activity, text string) *Activity {
	return &Activity{
		Type:         ActivityTypeMessage,
		ID:           shortuuid.New(),
		Timestamp:    time.Now().UTC(),
		ChannelID:    in.ChannelID,
		ServiceURL:   in.ServiceURL,
		From:         in.Recipient,
		Recipient:    in.From,
		Conversation: in.Conversation,
		Text:         text,
		Locale:       in.Locale,
		ReplyToID:    in.ID,
	}
}

// ErrorReply builds the reply sent when a turn fails.
func ErrorReply(in Activity) *Activity {
	return replyTo(in, ReplyTurnError)
}
