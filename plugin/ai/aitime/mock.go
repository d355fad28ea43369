package aitime

import (
	"iter"
	"time"
)

// MockRecognizer returns a fixed list of results regardless of input.
type MockRecognizer struct {
	Results []Result

	// Calls counts Recognize invocations.
	Calls int
}

// NewMockRecognizer creates a MockRecognizer returning results.
func NewMockRecognizer(results ...Result) *MockRecognizer {
	return &MockRecognizer{Results: results}
}

// Recognize yields the configured results.
func (m *MockRecognizer) Recognize(_ string, _ time.Time) iter.Seq[Result] {
	m.Calls++
	results := m.Results
	return func(yield func(Result) bool) {
		for _, r := range results {
			if !yield(r) {
				return
			}
		}
	}
}

// DateResult builds a date result whose values carry the given timex strings.
func DateResult(text string, timexes ...string) Result {
	values := make([]ResolutionValue, 0, len(timexes))
	for _, tx := range timexes {
		values = append(values, ResolutionValue{Timex: tx, Type: TypeDate})
	}
	return Result{
		Text:       text,
		End:        len(text),
		TypeName:   TypeNameDate,
		Resolution: Resolution{Values: values},
	}
}

// Ensure MockRecognizer implements Recognizer
var _ Recognizer = (*MockRecognizer)(nil)
