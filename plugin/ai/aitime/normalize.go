package aitime

import (
	"strings"
	"time"
)

// ResolvedDate is a concrete calendar date. AssumedYear and AssumedMonth
// record which components were taken from the reference instant.
type ResolvedDate struct {
	Date         time.Time `json:"date"`
	AssumedYear  bool      `json:"assumed_year"`
	AssumedMonth bool      `json:"assumed_month"`
}

// Assumed reports whether any component was filled in.
func (r ResolvedDate) Assumed() bool {
	return r.AssumedYear || r.AssumedMonth
}

// Normalize turns a decoded timex into a date relative to now.
//
// A definite timex maps to its own date. A partial timex resolves only when
// it carries a day of month; a missing year or month is taken from now.
// Anything else (weekday only, month only, times, durations) does not resolve.
// The returned date is midnight in now's location.
func Normalize(t Timex, now time.Time) (ResolvedDate, bool) {
	if !t.HasDate() {
		return ResolvedDate{}, false
	}
	loc := now.Location()
	if t.IsDefinite() {
		return ResolvedDate{
			Date: time.Date(t.Year, time.Month(t.Month), t.Day, 0, 0, 0, 0, loc),
		}, true
	}
	if !t.Has(HasDay) {
		return ResolvedDate{}, false
	}

	resolved := ResolvedDate{}
	year := t.Year
	if !t.Has(HasYear) {
		year = now.Year()
		resolved.AssumedYear = true
	}
	month := time.Month(t.Month)
	if !t.Has(HasMonth) {
		month = now.Month()
		resolved.AssumedMonth = true
	}
	resolved.Date = time.Date(year, month, t.Day, 0, 0, 0, 0, loc)
	return resolved, true
}

// DistinctTimex returns the timex strings of values in first-seen order,
// skipping values without one.
func DistinctTimex(values []ResolutionValue) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		tx := strings.TrimSpace(v.Timex)
		if tx == "" {
			continue
		}
		if _, ok := seen[tx]; ok {
			continue
		}
		seen[tx] = struct{}{}
		out = append(out, tx)
	}
	return out
}

// ResolveCandidates normalizes the first distinct timex among values.
// Later distinct forms are ignored even when they would resolve.
func ResolveCandidates(values []ResolutionValue, now time.Time) (ResolvedDate, bool) {
	distinct := DistinctTimex(values)
	if len(distinct) == 0 {
		return ResolvedDate{}, false
	}
	t, err := ParseTimex(distinct[0])
	if err != nil {
		return ResolvedDate{}, false
	}
	return Normalize(t, now)
}
