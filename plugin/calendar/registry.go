// Package calendar maps named recurring events to calendar dates.
package calendar

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DateFunc returns the event date for year, at midnight in loc.
type DateFunc func(year int, loc *time.Location) time.Time

// Fixed returns a DateFunc for an event on the same month and day every year.
func Fixed(month time.Month, day int) DateFunc {
	return func(year int, loc *time.Location) time.Time {
		return time.Date(year, month, day, 0, 0, 0, 0, loc)
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithRollover makes Resolve move events that already passed this year to
// the following year.
func WithRollover() Option {
	return func(r *Registry) {
		r.rollover = true
	}
}

// WithoutBuiltins starts the registry empty.
func WithoutBuiltins() Option {
	return func(r *Registry) {
		r.events = make(map[string]DateFunc)
	}
}

// Registry is a case-insensitive table of named events. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	events   map[string]DateFunc
	builtins map[string]DateFunc
	loaded   map[string]struct{}
	rollover bool
}

// NewRegistry creates a registry holding the built-in events.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		events: make(map[string]DateFunc),
		loaded: make(map[string]struct{}),
	}
	christmas := Fixed(time.December, 25)
	r.events["xmas"] = christmas
	r.events["christmas"] = christmas
	for _, opt := range opts {
		opt(r)
	}
	r.builtins = make(map[string]DateFunc, len(r.events))
	for name, fn := range r.events {
		r.builtins[name] = fn
	}
	return r
}

// Register adds fn under every name, replacing existing entries.
func (r *Registry) Register(names []string, fn DateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		key := normalizeName(name)
		if key == "" {
			continue
		}
		r.events[key] = fn
	}
}

// Resolve returns the date of the named event in the year of now, at
// midnight in now's location.
func (r *Registry) Resolve(name string, now time.Time) (time.Time, bool) {
	r.mu.RLock()
	fn, ok := r.events[normalizeName(name)]
	rollover := r.rollover
	r.mu.RUnlock()
	if !ok {
		return time.Time{}, false
	}

	loc := now.Location()
	target := fn(now.Year(), loc)
	if target.IsZero() {
		return time.Time{}, false
	}
	if rollover {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		if target.Before(today) {
			target = fn(now.Year()+1, loc)
			if target.IsZero() {
				return time.Time{}, false
			}
		}
	}
	return target, true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.events[normalizeName(name)]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.events))
	for name := range r.events {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
