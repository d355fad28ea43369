package aitime

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Supported cultures.
const (
	CultureEnglish   = "en-us"
	CultureEnglishGB = "en-gb"
)

// ErrUnsupportedCulture is returned by NewParser for cultures other than English.
var ErrUnsupportedCulture = errors.New("aitime: unsupported culture")

const valueLayout = "2006-01-02"

// monthNames maps month words and abbreviations to month numbers.
var monthNames = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may":  5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// weekdayNames maps weekday words to ISO weekday numbers.
var weekdayNames = map[string]int{
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
	"sunday":    7,
}

// relativeDays maps relative day keywords to day offsets.
var relativeDays = map[string]int{
	"today":                    0,
	"tonight":                  0,
	"tomorrow":                 1,
	"day after tomorrow":       2,
	"the day after tomorrow":   2,
	"yesterday":                -1,
	"day before yesterday":     -2,
	"the day before yesterday": -2,
}

// holidays maps holiday names the grammar knows to month and day.
var holidays = map[string][2]int{
	"christmas":        {12, 25},
	"christmas day":    {12, 25},
	"xmas":             {12, 25},
	"christmas eve":    {12, 24},
	"new year's day":   {1, 1},
	"new years day":    {1, 1},
	"new year's eve":   {12, 31},
	"new years eve":    {12, 31},
	"halloween":        {10, 31},
	"valentine's day":  {2, 14},
	"valentines day":   {2, 14},
	"independence day": {7, 4},
}

// smallNumbers maps number words used in "in N days".
var smallNumbers = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

const (
	monthExpr   = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\.?`
	dayExpr     = `(\d{1,2})(?:st|nd|rd|th)?`
	weekdayExpr = `(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`
	numberExpr  = `(\d+|a|an|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)`
)

// Patterns for the English date grammar.
var (
	isoDatePattern      = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDatePattern    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
	monthDayPattern     = regexp.MustCompile(`\b` + monthExpr + `\s+` + dayExpr + `(?:,?\s+(\d{4}))?\b`)
	dayMonthPattern     = regexp.MustCompile(`\b(?:the\s+)?` + dayExpr + `\s+(?:of\s+)?` + monthExpr + `(?:,?\s+(\d{4}))?\b`)
	ordinalDayPattern   = regexp.MustCompile(`\bthe\s+(\d{1,2})(?:st|nd|rd|th)\b`)
	monthPattern        = regexp.MustCompile(`\b` + monthExpr + `(?:\s+(\d{4}))?\b`)
	relativeDayPattern  = regexp.MustCompile(`\b(the day after tomorrow|day after tomorrow|the day before yesterday|day before yesterday|today|tonight|tomorrow|yesterday)\b`)
	inDurationPattern   = regexp.MustCompile(`\bin\s+` + numberExpr + `\s+(days?|weeks?|months?|years?)\b`)
	fromNowPattern      = regexp.MustCompile(`\b` + numberExpr + `\s+(days?|weeks?|months?|years?)\s+from\s+(?:now|today)\b`)
	durationPattern     = regexp.MustCompile(`\b(\d+)\s+(days?|weeks?)\b`)
	weekdayPattern      = regexp.MustCompile(`\b(?:(this|next|last|coming)\s+)?` + weekdayExpr + `\b`)
	relativeSpanPattern = regexp.MustCompile(`\b(this|next|last|coming)\s+(week|weekend|month|year)\b`)
	yearPattern         = regexp.MustCompile(`\b(?:in|of)\s+(\d{4})\b`)
	holidayPattern      = regexp.MustCompile(`\b(christmas eve|christmas day|christmas|xmas|new year'?s day|new year'?s eve|halloween|valentine'?s day|independence day)\b`)
	clockPattern        = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b|\b(noon|midnight)\b`)
	rangeConnector      = regexp.MustCompile(`^\s*(?:-|–|to|and|until|till|through|thru)\s*$`)
	rangeLead           = regexp.MustCompile(`\b(?:from|between)\s+$`)
)

// rule is one production of the grammar. build returns the resolution
// values for a match, or nil to reject it.
type rule struct {
	typeName string
	pattern  *regexp.Regexp
	build    func(m []string, ref time.Time) []ResolutionValue
}

// Parser recognizes English date expressions.
type Parser struct {
	culture string
	rules   []rule
}

// NewParser creates a parser for culture. Only English is supported; an
// empty culture means English.
func NewParser(culture string) (*Parser, error) {
	c := strings.ToLower(strings.TrimSpace(culture))
	switch c {
	case "", "en", CultureEnglish, CultureEnglishGB:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCulture, culture)
	}
	if c == "" || c == "en" {
		c = CultureEnglish
	}
	return &Parser{culture: c, rules: englishRules()}, nil
}

// Culture returns the culture the parser was built for.
func (p *Parser) Culture() string {
	return p.culture
}

// Recognize returns the date expressions found in text, resolved against ref.
// Matching runs lazily on iteration and can be repeated.
func (p *Parser) Recognize(text string, ref time.Time) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		for _, r := range p.extract(text, ref) {
			if !yield(r) {
				return
			}
		}
	}
}

type candidate struct {
	start, end int
	priority   int
	result     Result
}

func (p *Parser) extract(text string, ref time.Time) []Result {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	var candidates []candidate
	for i, r := range p.rules {
		for _, idx := range r.pattern.FindAllStringSubmatchIndex(lower, -1) {
			m := submatches(lower, idx)
			values := r.build(m, ref)
			if len(values) == 0 {
				continue
			}
			candidates = append(candidates, candidate{
				start:    idx[0],
				end:      idx[1],
				priority: i,
				result: Result{
					Text:       lower[idx[0]:idx[1]],
					Start:      idx[0],
					End:        idx[1],
					TypeName:   r.typeName,
					Resolution: Resolution{Values: values},
				},
			})
		}
	}

	// Longest match wins at each position, earlier rules break ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if a.end-a.start != b.end-b.start {
			return a.end-a.start > b.end-b.start
		}
		return a.priority < b.priority
	})

	var selected []Result
	lastEnd := -1
	for _, c := range candidates {
		if c.start < lastEnd {
			continue
		}
		selected = append(selected, c.result)
		lastEnd = c.end
	}

	return mergeRanges(lower, selected)
}

// mergeRanges joins two adjacent day-level dates separated by a range
// connector ("dec 1 to dec 5") into one date range.
func mergeRanges(text string, results []Result) []Result {
	if len(results) < 2 {
		return results
	}
	out := make([]Result, 0, len(results))
	for i := 0; i < len(results); i++ {
		if i+1 < len(results) {
			if merged, ok := mergePair(text, results[i], results[i+1]); ok {
				out = append(out, merged)
				i++
				continue
			}
		}
		out = append(out, results[i])
	}
	return out
}

func mergePair(text string, a, b Result) (Result, bool) {
	if a.TypeName != TypeNameDate || b.TypeName != TypeNameDate {
		return Result{}, false
	}
	if !rangeConnector.MatchString(text[a.End:b.Start]) {
		return Result{}, false
	}
	va, vb := a.Resolution.Values, b.Resolution.Values
	if len(va) == 0 || len(vb) == 0 {
		return Result{}, false
	}
	ta, errA := ParseTimex(va[0].Timex)
	tb, errB := ParseTimex(vb[0].Timex)
	if errA != nil || errB != nil || !ta.Has(HasDay) || !tb.Has(HasDay) {
		return Result{}, false
	}

	startDate, errS := time.Parse(valueLayout, va[len(va)-1].Value)
	endDate, errE := time.Parse(valueLayout, vb[len(vb)-1].Value)
	if errS != nil || errE != nil {
		return Result{}, false
	}
	days := int(endDate.Sub(startDate).Hours() / 24)
	if days < 0 {
		return Result{}, false
	}

	timex := fmt.Sprintf("(%s,%s,P%dD)", va[0].Timex, vb[0].Timex, days)
	n := min(len(va), len(vb))
	values := make([]ResolutionValue, 0, n)
	for i := 0; i < n; i++ {
		values = append(values, ResolutionValue{
			Timex: timex,
			Type:  TypeDateRange,
			Start: va[i].Value,
			End:   vb[i].Value,
		})
	}

	start := a.Start
	if loc := rangeLead.FindStringIndex(text[:a.Start]); loc != nil {
		start = loc[0]
	}
	return Result{
		Text:       text[start:b.End],
		Start:      start,
		End:        b.End,
		TypeName:   TypeNameDateRange,
		Resolution: Resolution{Values: values},
	}, true
}

func englishRules() []rule {
	return []rule{
		{TypeNameDate, isoDatePattern, buildISODate},
		{TypeNameDate, monthDayPattern, buildMonthDay},
		{TypeNameDate, dayMonthPattern, buildDayMonth},
		{TypeNameDate, slashDatePattern, buildSlashDate},
		{TypeNameDate, holidayPattern, buildHoliday},
		{TypeNameDate, relativeDayPattern, buildRelativeDay},
		{TypeNameDate, inDurationPattern, buildOffsetDate},
		{TypeNameDate, fromNowPattern, buildOffsetDate},
		{TypeNameDate, weekdayPattern, buildWeekday},
		{TypeNameDate, ordinalDayPattern, buildOrdinalDay},
		{TypeNameDateRange, relativeSpanPattern, buildRelativeSpan},
		{TypeNameDateRange, monthPattern, buildMonth},
		{TypeNameDateRange, yearPattern, buildYear},
		{TypeNameDuration, durationPattern, buildDuration},
		{TypeNameTime, clockPattern, buildClock},
	}
}

func buildISODate(m []string, _ time.Time) []ResolutionValue {
	return definiteDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
}

func buildMonthDay(m []string, ref time.Time) []ResolutionValue {
	return monthDayValues(monthNames[m[1]], atoi(m[2]), m[3], ref)
}

func buildDayMonth(m []string, ref time.Time) []ResolutionValue {
	return monthDayValues(monthNames[m[2]], atoi(m[1]), m[3], ref)
}

func buildSlashDate(m []string, ref time.Time) []ResolutionValue {
	year := m[3]
	if len(year) == 2 {
		year = "20" + year
	}
	return monthDayValues(atoi(m[1]), atoi(m[2]), year, ref)
}

func buildHoliday(m []string, ref time.Time) []ResolutionValue {
	md, ok := holidays[m[1]]
	if !ok {
		return nil
	}
	return ambiguousDate(md[0], md[1], ref)
}

func buildRelativeDay(m []string, ref time.Time) []ResolutionValue {
	offset, ok := relativeDays[m[1]]
	if !ok {
		return nil
	}
	d := dayOf(ref).AddDate(0, 0, offset)
	return definiteDate(d.Year(), int(d.Month()), d.Day())
}

func buildOffsetDate(m []string, ref time.Time) []ResolutionValue {
	n, ok := parseCount(m[1])
	if !ok {
		return nil
	}
	d := dayOf(ref)
	switch strings.TrimSuffix(m[2], "s") {
	case "day":
		d = d.AddDate(0, 0, n)
	case "week":
		d = d.AddDate(0, 0, 7*n)
	case "month":
		d = d.AddDate(0, n, 0)
	case "year":
		d = d.AddDate(n, 0, 0)
	default:
		return nil
	}
	return definiteDate(d.Year(), int(d.Month()), d.Day())
}

func buildWeekday(m []string, ref time.Time) []ResolutionValue {
	modifier := m[1]
	target := weekdayNames[m[2]]
	today := dayOf(ref)
	current := isoWeekday(today)

	switch modifier {
	case "this":
		d := today.AddDate(0, 0, target-current)
		return definiteDate(d.Year(), int(d.Month()), d.Day())
	case "next", "coming":
		d := today.AddDate(0, 0, 7-current+target)
		if modifier == "coming" {
			d = today.AddDate(0, 0, (target-current+7)%7)
			if d.Equal(today) {
				d = d.AddDate(0, 0, 7)
			}
		}
		return definiteDate(d.Year(), int(d.Month()), d.Day())
	case "last":
		d := today.AddDate(0, 0, -current-7+target)
		return definiteDate(d.Year(), int(d.Month()), d.Day())
	}

	timex := fmt.Sprintf("XXXX-WXX-%d", target)
	diff := (target - current + 7) % 7
	future := today.AddDate(0, 0, diff)
	past := future
	if diff != 0 {
		past = future.AddDate(0, 0, -7)
	}
	return []ResolutionValue{
		{Timex: timex, Type: TypeDate, Value: past.Format(valueLayout)},
		{Timex: timex, Type: TypeDate, Value: future.Format(valueLayout)},
	}
}

func buildOrdinalDay(m []string, ref time.Time) []ResolutionValue {
	day := atoi(m[1])
	if day < 1 || day > 31 {
		return nil
	}
	timex := fmt.Sprintf("XXXX-XX-%02d", day)
	today := dayOf(ref)

	future := time.Date(today.Year(), today.Month(), day, 0, 0, 0, 0, today.Location())
	if future.Before(today) {
		future = time.Date(today.Year(), today.Month()+1, day, 0, 0, 0, 0, today.Location())
	}
	past := time.Date(future.Year(), future.Month()-1, day, 0, 0, 0, 0, today.Location())
	return []ResolutionValue{
		{Timex: timex, Type: TypeDate, Value: past.Format(valueLayout)},
		{Timex: timex, Type: TypeDate, Value: future.Format(valueLayout)},
	}
}

func buildRelativeSpan(m []string, ref time.Time) []ResolutionValue {
	offset := 0
	switch m[1] {
	case "next", "coming":
		offset = 1
	case "last":
		offset = -1
	}
	today := dayOf(ref)

	switch m[2] {
	case "week", "weekend":
		d := today.AddDate(0, 0, 7*offset)
		year, week := d.ISOWeek()
		monday := d.AddDate(0, 0, 1-isoWeekday(d))
		timex := fmt.Sprintf("%04d-W%02d", year, week)
		start, end := monday, monday.AddDate(0, 0, 7)
		if m[2] == "weekend" {
			timex += "-WE"
			start, end = monday.AddDate(0, 0, 5), monday.AddDate(0, 0, 7)
		}
		return []ResolutionValue{{Timex: timex, Type: TypeDateRange, Start: start.Format(valueLayout), End: end.Format(valueLayout)}}
	case "month":
		first := time.Date(today.Year(), today.Month()+time.Month(offset), 1, 0, 0, 0, 0, today.Location())
		timex := fmt.Sprintf("%04d-%02d", first.Year(), int(first.Month()))
		return []ResolutionValue{{Timex: timex, Type: TypeDateRange, Start: first.Format(valueLayout), End: first.AddDate(0, 1, 0).Format(valueLayout)}}
	case "year":
		first := time.Date(today.Year()+offset, time.January, 1, 0, 0, 0, 0, today.Location())
		timex := fmt.Sprintf("%04d", first.Year())
		return []ResolutionValue{{Timex: timex, Type: TypeDateRange, Start: first.Format(valueLayout), End: first.AddDate(1, 0, 0).Format(valueLayout)}}
	}
	return nil
}

func buildMonth(m []string, ref time.Time) []ResolutionValue {
	month := monthNames[m[1]]
	// A bare "may" or "mar" is more often a word than a month.
	if m[2] == "" && (m[1] == "may" || m[1] == "mar") {
		return nil
	}
	loc := ref.Location()
	if m[2] != "" {
		first := time.Date(atoi(m[2]), time.Month(month), 1, 0, 0, 0, 0, loc)
		return []ResolutionValue{{
			Timex: fmt.Sprintf("%04d-%02d", first.Year(), month),
			Type:  TypeDateRange,
			Start: first.Format(valueLayout),
			End:   first.AddDate(0, 1, 0).Format(valueLayout),
		}}
	}
	timex := fmt.Sprintf("XXXX-%02d", month)
	thisYear := time.Date(ref.Year(), time.Month(month), 1, 0, 0, 0, 0, loc)
	past, future := thisYear.AddDate(-1, 0, 0), thisYear
	if !thisYear.After(dayOf(ref)) {
		past, future = thisYear, thisYear.AddDate(1, 0, 0)
	}
	return []ResolutionValue{
		{Timex: timex, Type: TypeDateRange, Start: past.Format(valueLayout), End: past.AddDate(0, 1, 0).Format(valueLayout)},
		{Timex: timex, Type: TypeDateRange, Start: future.Format(valueLayout), End: future.AddDate(0, 1, 0).Format(valueLayout)},
	}
}

func buildYear(m []string, ref time.Time) []ResolutionValue {
	first := time.Date(atoi(m[1]), time.January, 1, 0, 0, 0, 0, ref.Location())
	return []ResolutionValue{{
		Timex: m[1],
		Type:  TypeDateRange,
		Start: first.Format(valueLayout),
		End:   first.AddDate(1, 0, 0).Format(valueLayout),
	}}
}

func buildDuration(m []string, _ time.Time) []ResolutionValue {
	n := atoi(m[1])
	unit := "D"
	if strings.HasPrefix(m[2], "week") {
		unit = "W"
	}
	timex := fmt.Sprintf("P%d%s", n, unit)
	seconds := n * 86400
	if unit == "W" {
		seconds *= 7
	}
	return []ResolutionValue{{Timex: timex, Type: TypeDuration, Value: strconv.Itoa(seconds)}}
}

func buildClock(m []string, _ time.Time) []ResolutionValue {
	var hour, minute int
	switch m[4] {
	case "noon":
		hour = 12
	case "midnight":
		hour = 0
	default:
		hour = atoi(m[1])
		minute = atoi(m[2])
		if hour < 1 || hour > 12 || minute > 59 {
			return nil
		}
		if m[3] == "pm" && hour < 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
	}
	timex := fmt.Sprintf("T%02d", hour)
	if minute != 0 {
		timex = fmt.Sprintf("T%02d:%02d", hour, minute)
	}
	return []ResolutionValue{{Timex: timex, Type: TypeTime, Value: fmt.Sprintf("%02d:%02d:00", hour, minute)}}
}

// monthDayValues builds values for a month/day pair with an optional year.
func monthDayValues(month, day int, year string, ref time.Time) []ResolutionValue {
	if year != "" {
		return definiteDate(atoi(year), month, day)
	}
	return ambiguousDate(month, day, ref)
}

// definiteDate returns the single value of a fully specified date.
func definiteDate(year, month, day int) []ResolutionValue {
	if !validDate(year, month, day) {
		return nil
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return []ResolutionValue{{
		Timex: d.Format(valueLayout),
		Type:  TypeDate,
		Value: d.Format(valueLayout),
	}}
}

// ambiguousDate returns the past and future occurrence of a yearless date.
func ambiguousDate(month, day int, ref time.Time) []ResolutionValue {
	if !validDate(2000, month, day) { // leap year, so Feb 29 is accepted
		return nil
	}
	today := dayOf(ref)
	timex := fmt.Sprintf("XXXX-%02d-%02d", month, day)
	candidate := time.Date(today.Year(), time.Month(month), day, 0, 0, 0, 0, today.Location())
	past, future := candidate.AddDate(-1, 0, 0), candidate
	if candidate.Before(today) {
		past, future = candidate, candidate.AddDate(1, 0, 0)
	}
	return []ResolutionValue{
		{Timex: timex, Type: TypeDate, Value: past.Format(valueLayout)},
		{Timex: timex, Type: TypeDate, Value: future.Format(valueLayout)},
	}
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return day <= last
}

// dayOf truncates t to midnight in its own location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isoWeekday returns 1 for Monday through 7 for Sunday.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func parseCount(s string) (int, bool) {
	if n, ok := smallNumbers[s]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// submatches expands an index slice into strings; absent groups are "".
func submatches(s string, idx []int) []string {
	out := make([]string, len(idx)/2)
	for i := range out {
		if idx[2*i] >= 0 {
			out[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	return out
}
