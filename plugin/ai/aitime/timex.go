package aitime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Components is a bit mask of the fields a timex spells out.
type Components uint16

const (
	HasYear Components = 1 << iota
	HasMonth
	HasDay
	HasWeek
	HasWeekday
	HasHour
	HasMinute
	HasDuration
	HasRange
)

// String returns a compact debug form such as "YMD".
func (c Components) String() string {
	flags := []struct {
		bit  Components
		name byte
	}{
		{HasYear, 'Y'}, {HasMonth, 'M'}, {HasDay, 'D'}, {HasWeek, 'W'},
		{HasWeekday, 'w'}, {HasHour, 'h'}, {HasMinute, 'm'}, {HasDuration, 'P'},
		{HasRange, 'R'},
	}
	var b []byte
	for _, f := range flags {
		if c&f.bit != 0 {
			b = append(b, f.name)
		}
	}
	if len(b) == 0 {
		return "none"
	}
	return string(b)
}

// Resolution value types.
const (
	TypeDate      = "date"
	TypeDateRange = "daterange"
	TypeTime      = "time"
	TypeDuration  = "duration"
)

// presentRef is the timex for "now".
const presentRef = "PRESENT_REF"

// Duration is the decoded P... part of a timex.
type Duration struct {
	Years   int
	Months  int
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// Timex is a decoded timex expression. Fields are only meaningful when the
// matching bit is set in Explicit.
type Timex struct {
	Raw      string
	Year     int
	Month    int
	Day      int
	Week     int
	Weekday  int // ISO, Monday = 1
	Hour     int
	Minute   int
	Duration Duration
	Explicit Components
	Present  bool
}

// Has reports whether every component in c is present.
func (t Timex) Has(c Components) bool {
	return t.Explicit&c == c
}

// IsDefinite reports whether year, month and day are all present.
func (t Timex) IsDefinite() bool {
	return t.Has(HasYear | HasMonth | HasDay)
}

// HasDate reports whether the timex carries a day-level date component.
func (t Timex) HasDate() bool {
	return t.Explicit&(HasDay|HasWeekday) != 0
}

// ErrEmptyTimex is returned when ParseTimex is given a blank string.
var ErrEmptyTimex = errors.New("aitime: empty timex")

var (
	fullDatePattern = regexp.MustCompile(`^(\d{4}|XXXX)-(\d{2}|XX)-(\d{2}|XX)$`)
	weekdayTimex    = regexp.MustCompile(`^(\d{4}|XXXX)-W(\d{2}|XX)-(\d)$`)
	weekTimex       = regexp.MustCompile(`^(\d{4}|XXXX)-W(\d{2}|XX)(?:-WE)?$`)
	monthTimex      = regexp.MustCompile(`^(\d{4}|XXXX)-(\d{2})$`)
	yearTimex       = regexp.MustCompile(`^(\d{4})$`)
	clockTimex      = regexp.MustCompile(`^(\d{2})(?::(\d{2}))?(?::(\d{2}))?$`)
	partOfDayTimex  = regexp.MustCompile(`^(MO|MI|AF|EV|NI|DT)$`)
	durationTimex   = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)
)

// ParseTimex decodes a canonical timex string.
//
// Supported shapes: full and partial dates (2024-12-25, XXXX-12-25,
// XXXX-XX-15), months (2024-12, XXXX-12), years, ISO weeks and weekdays
// (2024-W05, XXXX-WXX-5), clock times with or without a date (T10:30),
// durations (P3D, PT2H), ranges "(start,end,duration)" and PRESENT_REF.
// A range decodes to its start plus its duration.
func ParseTimex(s string) (Timex, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timex{}, ErrEmptyTimex
	}
	t := Timex{Raw: s}

	switch {
	case s == presentRef:
		t.Present = true
		return t, nil
	case strings.HasPrefix(s, "P"):
		if err := t.parseDuration(s); err != nil {
			return Timex{}, err
		}
		return t, nil
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		parts := strings.Split(s[1:len(s)-1], ",")
		if len(parts) != 3 {
			return Timex{}, fmt.Errorf("aitime: malformed range timex %q", s)
		}
		if err := t.parseDateTime(strings.TrimSpace(parts[0])); err != nil {
			return Timex{}, err
		}
		if err := t.parseDuration(strings.TrimSpace(parts[2])); err != nil {
			return Timex{}, err
		}
		t.Explicit |= HasRange
		return t, nil
	}

	if err := t.parseDateTime(s); err != nil {
		return Timex{}, err
	}
	return t, nil
}

func (t *Timex) parseDateTime(s string) error {
	datePart, timePart, hasTime := strings.Cut(s, "T")
	if datePart != "" {
		if err := t.parseDate(datePart); err != nil {
			return err
		}
	}
	if hasTime {
		if err := t.parseClock(timePart); err != nil {
			return err
		}
	}
	if datePart == "" && !hasTime {
		return fmt.Errorf("aitime: unrecognized timex %q", s)
	}
	return nil
}

func (t *Timex) parseDate(s string) error {
	if m := fullDatePattern.FindStringSubmatch(s); m != nil {
		t.setYear(m[1])
		if m[2] != "XX" {
			t.Month = atoi(m[2])
			t.Explicit |= HasMonth
		}
		if m[3] != "XX" {
			t.Day = atoi(m[3])
			t.Explicit |= HasDay
		}
		return t.validate()
	}
	if m := weekdayTimex.FindStringSubmatch(s); m != nil {
		t.setYear(m[1])
		t.setWeek(m[2])
		t.Weekday = atoi(m[3])
		t.Explicit |= HasWeekday
		return t.validate()
	}
	if m := weekTimex.FindStringSubmatch(s); m != nil {
		t.setYear(m[1])
		t.setWeek(m[2])
		return t.validate()
	}
	if m := monthTimex.FindStringSubmatch(s); m != nil {
		t.setYear(m[1])
		t.Month = atoi(m[2])
		t.Explicit |= HasMonth
		return t.validate()
	}
	if m := yearTimex.FindStringSubmatch(s); m != nil {
		t.setYear(m[1])
		return nil
	}
	return fmt.Errorf("aitime: unrecognized date %q", s)
}

func (t *Timex) parseClock(s string) error {
	if partOfDayTimex.MatchString(s) {
		return nil
	}
	m := clockTimex.FindStringSubmatch(s)
	if m == nil {
		return fmt.Errorf("aitime: unrecognized time %q", s)
	}
	t.Hour = atoi(m[1])
	t.Explicit |= HasHour
	if m[2] != "" {
		t.Minute = atoi(m[2])
		t.Explicit |= HasMinute
	}
	if t.Hour > 24 || t.Minute > 59 {
		return fmt.Errorf("aitime: time out of range %q", s)
	}
	return nil
}

func (t *Timex) parseDuration(s string) error {
	m := durationTimex.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return fmt.Errorf("aitime: unrecognized duration %q", s)
	}
	t.Duration = Duration{
		Years:   atoi(m[1]),
		Months:  atoi(m[2]),
		Weeks:   atoi(m[3]),
		Days:    atoi(m[4]),
		Hours:   atoi(m[5]),
		Minutes: atoi(m[6]),
		Seconds: atoi(m[7]),
	}
	t.Explicit |= HasDuration
	return nil
}

func (t *Timex) setYear(s string) {
	if s == "XXXX" {
		return
	}
	t.Year = atoi(s)
	t.Explicit |= HasYear
}

func (t *Timex) setWeek(s string) {
	if s == "XX" {
		return
	}
	t.Week = atoi(s)
	t.Explicit |= HasWeek
}

func (t *Timex) validate() error {
	if t.Has(HasMonth) && (t.Month < 1 || t.Month > 12) {
		return fmt.Errorf("aitime: month out of range in %q", t.Raw)
	}
	if t.Has(HasDay) && (t.Day < 1 || t.Day > 31) {
		return fmt.Errorf("aitime: day out of range in %q", t.Raw)
	}
	if t.Has(HasWeek) && (t.Week < 1 || t.Week > 53) {
		return fmt.Errorf("aitime: week out of range in %q", t.Raw)
	}
	if t.Has(HasWeekday) && (t.Weekday < 1 || t.Weekday > 7) {
		return fmt.Errorf("aitime: weekday out of range in %q", t.Raw)
	}
	return nil
}

// atoi converts a pre-validated digit string; empty yields 0.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
