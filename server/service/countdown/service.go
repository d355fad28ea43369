// Package countdown turns a recognized entity into a "days until" reply.
package countdown

import (
	"log/slog"
	"time"

	"github.com/hrygo/daysuntil/plugin/ai/aitime"
	"github.com/hrygo/daysuntil/plugin/calendar"
	"github.com/hrygo/daysuntil/server/internal/errors"
	"github.com/hrygo/daysuntil/server/internal/observability"
)

// Fixed replies.
const (
	ReplyNotUnderstood = "Sorry, I did not understand your question!"
	ReplyUnknownDate   = "I am sorry, I could not figure out the date you are asking :("
)

// Outcome classifies how an entity was handled.
type Outcome string

const (
	OutcomeAnswered          Outcome = "ANSWERED"
	OutcomeNoEntity          Outcome = Outcome(errors.ErrCodeNoEntityRecognized)
	OutcomeUnsupportedEvent  Outcome = Outcome(errors.ErrCodeUnsupportedNamedEvent)
	OutcomeNoUsableCandidate Outcome = Outcome(errors.ErrCodeNoUsableDateCandidate)
)

// Event names reported to the recorder.
const (
	EventAnswered = "countdown.answered"
	EventFallback = "countdown.fallback"
)

// DateResolver resolves a date expressed in free text against now.
type DateResolver interface {
	ResolveText(text string, now time.Time) (aitime.ResolvedDate, bool)
}

// EventResolver resolves a named event against now.
type EventResolver interface {
	Resolve(name string, now time.Time) (time.Time, bool)
}

// Answer is a reply together with the values it was built from.
type Answer struct {
	Reply        string    `json:"reply"`
	Outcome      Outcome   `json:"outcome"`
	Days         int       `json:"days"`
	Date         time.Time `json:"date,omitzero"`
	AssumedYear  bool      `json:"assumed_year"`
	AssumedMonth bool      `json:"assumed_month"`
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder reports outcomes to rec.
func WithRecorder(rec observability.EventRecorder) Option {
	return func(s *Service) {
		s.recorder = rec
	}
}

// Service dispatches entities to the calendar or the date pipeline.
// It never reads the clock and is safe for concurrent use.
type Service struct {
	events   EventResolver
	dates    DateResolver
	recorder observability.EventRecorder
}

// NewService creates a countdown service.
func NewService(events EventResolver, dates DateResolver, opts ...Option) *Service {
	s := &Service{events: events, dates: dates}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDefaultService builds a service over the built-in calendar and the
// English date grammar.
func NewDefaultService(opts ...Option) (*Service, error) {
	dates, err := aitime.NewEnglishService(aitime.CultureEnglish)
	if err != nil {
		return nil, err
	}
	return NewService(calendar.NewRegistry(), dates, opts...), nil
}

// Resolve returns the reply for entity at now.
func (s *Service) Resolve(entity *Entity, now time.Time) string {
	return s.Answer(entity, now).Reply
}

// Answer resolves entity at now and returns the reply with its details.
func (s *Service) Answer(entity *Entity, now time.Time) Answer {
	var a Answer
	switch {
	case entity == nil:
		a = fallback(OutcomeNoEntity, ReplyNotUnderstood)
	case entity.Kind == KindNamedEvent:
		a = s.answerEvent(entity.Text, now)
	case entity.Kind == KindDateRange:
		a = s.answerDate(entity.Text, now)
	default:
		a = fallback(OutcomeNoEntity, ReplyNotUnderstood)
	}
	s.record(entity, a)
	return a
}

func (s *Service) answerEvent(name string, now time.Time) Answer {
	target, ok := s.events.Resolve(name, now)
	if !ok {
		return fallback(OutcomeUnsupportedEvent, ReplyUnknownDate)
	}
	days := DaysUntil(now, target)
	return Answer{
		Reply:   formatDays(days),
		Outcome: OutcomeAnswered,
		Days:    days,
		Date:    target,
	}
}

func (s *Service) answerDate(text string, now time.Time) Answer {
	resolved, ok := s.dates.ResolveText(text, now)
	if !ok {
		return fallback(OutcomeNoUsableCandidate, ReplyUnknownDate)
	}
	days := DaysUntil(now, resolved.Date)
	reply := formatDays(days)
	if resolved.Assumed() {
		reply = formatAssumed(resolved.Date, days)
	}
	return Answer{
		Reply:        reply,
		Outcome:      OutcomeAnswered,
		Days:         days,
		Date:         resolved.Date,
		AssumedYear:  resolved.AssumedYear,
		AssumedMonth: resolved.AssumedMonth,
	}
}

func (s *Service) record(entity *Entity, a Answer) {
	if s.recorder == nil {
		return
	}
	attrs := []slog.Attr{slog.String("outcome", string(a.Outcome))}
	if entity != nil {
		attrs = append(attrs, slog.String("kind", entity.Kind.String()), slog.String("text", entity.Text))
	}
	if a.Outcome != OutcomeAnswered {
		s.recorder.RecordEvent(EventFallback, attrs...)
		return
	}
	attrs = append(attrs, slog.Int("days", a.Days), slog.Bool("assumed", a.AssumedYear || a.AssumedMonth))
	s.recorder.RecordEvent(EventAnswered, attrs...)
}

func fallback(outcome Outcome, reply string) Answer {
	return Answer{Reply: reply, Outcome: outcome}
}

var _ EventResolver = (*calendar.Registry)(nil)
var _ DateResolver = (*aitime.Service)(nil)
