package calendar

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// EventSpec describes one extra event in an events file. An event is either
// a fixed month and day or a yearly RRULE such as
// "FREQ=YEARLY;BYMONTH=11;BYDAY=+4TH".
type EventSpec struct {
	Names []string `yaml:"names" json:"names"`
	RRule string   `yaml:"rrule,omitempty" json:"rrule,omitempty"`
	Month int      `yaml:"month,omitempty" json:"month,omitempty"`
	Day   int      `yaml:"day,omitempty" json:"day,omitempty"`
}

// EventsFile is the top-level layout of an events file.
type EventsFile struct {
	Events []EventSpec `yaml:"events" json:"events"`
}

// namedEvent is a parsed event ready to register.
type namedEvent struct {
	names []string
	fn    DateFunc
}

// LoadFile reads an events file and registers every event in it. Files
// ending in .ics are read as iCalendar, anything else as YAML.
// It returns the number of events registered.
func (r *Registry) LoadFile(path string) (int, error) {
	events, err := readEventsFile(path)
	if err != nil {
		return 0, err
	}
	r.register(events, false)
	slog.Info("loaded calendar events", "path", path, "count", len(events))
	return len(events), nil
}

// ReloadFile replaces the events of earlier loads with the contents of path.
// Built-in events shadowed by a dropped entry come back. On error the
// registry is left unchanged.
func (r *Registry) ReloadFile(path string) (int, error) {
	events, err := readEventsFile(path)
	if err != nil {
		return 0, err
	}
	r.register(events, true)
	slog.Info("reloaded calendar events", "path", path, "count", len(events))
	return len(events), nil
}

// Load registers the events of a YAML document. Nothing is registered when
// any event is invalid.
func (r *Registry) Load(data []byte) (int, error) {
	events, err := parseYAML(data)
	if err != nil {
		return 0, err
	}
	r.register(events, false)
	return len(events), nil
}

func (r *Registry) register(events []namedEvent, replace bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if replace {
		for name := range r.loaded {
			if fn, ok := r.builtins[name]; ok {
				r.events[name] = fn
			} else {
				delete(r.events, name)
			}
		}
		r.loaded = make(map[string]struct{})
	}
	for _, ev := range events {
		for _, name := range ev.names {
			key := normalizeName(name)
			if key == "" {
				continue
			}
			r.events[key] = ev.fn
			r.loaded[key] = struct{}{}
		}
	}
}

func readEventsFile(path string) ([]namedEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read events file %s", path)
	}

	var events []namedEvent
	if strings.EqualFold(filepath.Ext(path), ".ics") {
		events, err = parseICS(data)
	} else {
		events, err = parseYAML(data)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load events file %s", path)
	}
	return events, nil
}

func parseYAML(data []byte) ([]namedEvent, error) {
	var file EventsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse events")
	}

	events := make([]namedEvent, 0, len(file.Events))
	for i, spec := range file.Events {
		fn, err := spec.DateFunc()
		if err != nil {
			return nil, errors.Wrapf(err, "event %d", i)
		}
		events = append(events, namedEvent{names: spec.Names, fn: fn})
	}
	return events, nil
}

// DateFunc builds the date function described by the spec.
func (s EventSpec) DateFunc() (DateFunc, error) {
	if len(s.Names) == 0 {
		return nil, errors.New("event has no names")
	}
	if s.RRule != "" {
		return RRuleDate(s.RRule)
	}
	if s.Month < 1 || s.Month > 12 || s.Day < 1 || s.Day > 31 {
		return nil, errors.Errorf("event %q needs an rrule or a valid month and day", s.Names[0])
	}
	return Fixed(time.Month(s.Month), s.Day), nil
}

// RRuleDate returns a DateFunc yielding the first occurrence of rule in the
// requested year. Years without an occurrence yield the zero time.
func RRuleDate(rule string) (DateFunc, error) {
	return rruleDate(rule, time.Time{})
}

// rruleDate anchors rule at dtstart, or at January 1 of the requested year
// when dtstart is zero.
func rruleDate(rule string, dtstart time.Time) (DateFunc, error) {
	if _, err := rrule.StrToRRule(rule); err != nil {
		return nil, errors.Wrapf(err, "invalid rrule %q", rule)
	}
	return func(year int, loc *time.Location) time.Time {
		r, err := rrule.StrToRRule(rule)
		if err != nil {
			return time.Time{}
		}
		anchor := loc
		if !dtstart.IsZero() {
			anchor = dtstart.Location()
		}
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, anchor)
		if dtstart.IsZero() {
			r.DTStart(start)
		} else {
			r.DTStart(dtstart)
		}
		occ := r.Between(start, start.AddDate(1, 0, 0), true)
		if len(occ) == 0 {
			return time.Time{}
		}
		d := occ[0].In(anchor)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}, nil
}
