// Package aitime recognizes English date expressions and decodes them into
// timex values that can be normalized against a reference instant.
package aitime

import (
	"iter"
	"time"
)

// Recognizer finds date expressions in free text.
// Recognize must be a pure function of text and ref so the returned sequence
// can be ranged over more than once.
type Recognizer interface {
	Recognize(text string, ref time.Time) iter.Seq[Result]
}

// Result type names reported by the grammar.
const (
	TypeNameDate      = "datetimeV2.date"
	TypeNameDateRange = "datetimeV2.daterange"
	TypeNameTime      = "datetimeV2.time"
	TypeNameDuration  = "datetimeV2.duration"
)

// Result is one recognized span of the input.
type Result struct {
	Text       string     `json:"text"`
	Start      int        `json:"start"` // byte offset, inclusive
	End        int        `json:"end"`   // byte offset, exclusive
	TypeName   string     `json:"type_name"`
	Resolution Resolution `json:"resolution"`
}

// Resolution holds every interpretation the grammar proposes for a span.
// An ambiguous date yields several values sharing one timex.
type Resolution struct {
	Values []ResolutionValue `json:"values"`
}

// ResolutionValue is a single interpretation of a span.
type ResolutionValue struct {
	Timex string `json:"timex,omitempty"`
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}
