package calendar

import (
	"bytes"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/pkg/errors"
)

// parseICS turns every VEVENT with a SUMMARY into a named event. Recurring
// events follow their RRULE from DTSTART; one-off events keep their own
// date whatever year is asked for.
func parseICS(data []byte) ([]namedEvent, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty calendar")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse calendar")
	}

	events := make([]namedEvent, 0)
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			slog.Warn("skipping calendar event", "error", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (namedEvent, error) {
	summary := ve.GetProperty(ical.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return namedEvent{}, errors.New("event has no summary")
	}
	name := strings.TrimSpace(summary.Value)

	start, err := eventStart(ve)
	if err != nil {
		return namedEvent{}, errors.Wrapf(err, "event %q", name)
	}

	if rule := ve.GetProperty(ical.ComponentPropertyRrule); rule != nil && rule.Value != "" {
		fn, err := rruleDate(rule.Value, start)
		if err != nil {
			return namedEvent{}, errors.Wrapf(err, "event %q", name)
		}
		return namedEvent{names: []string{name}, fn: fn}, nil
	}

	year, month, day := start.Date()
	return namedEvent{
		names: []string{name},
		fn: func(_ int, loc *time.Location) time.Time {
			return time.Date(year, month, day, 0, 0, 0, 0, loc)
		},
	}, nil
}

// eventStart reads DTSTART. All-day values (VALUE=DATE) are parsed by hand
// as a plain date.
func eventStart(ve *ical.VEvent) (time.Time, error) {
	prop := ve.GetProperty(ical.ComponentPropertyDtStart)
	if prop == nil {
		return time.Time{}, errors.New("missing DTSTART")
	}
	if value := strings.TrimSpace(prop.Value); !strings.Contains(value, "T") {
		d, err := time.Parse("20060102", value)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "invalid DTSTART %q", value)
		}
		return d, nil
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "invalid DTSTART")
	}
	return start, nil
}
