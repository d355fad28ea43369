package aitime

import (
	"time"
)

// Service runs the recognize, dedup and normalize pipeline over free text.
type Service struct {
	recognizer Recognizer
}

// NewService creates a service on top of recognizer.
func NewService(recognizer Recognizer) *Service {
	return &Service{recognizer: recognizer}
}

// NewEnglishService creates a service backed by the English grammar.
func NewEnglishService(culture string) (*Service, error) {
	p, err := NewParser(culture)
	if err != nil {
		return nil, err
	}
	return NewService(p), nil
}

// ResolveText resolves the date expressed in text against now.
//
// Every recognized span is tried in order and contributes only its first
// distinct timex. A later span that resolves replaces an earlier one.
func (s *Service) ResolveText(text string, now time.Time) (ResolvedDate, bool) {
	var (
		resolved ResolvedDate
		found    bool
	)
	for r := range s.recognizer.Recognize(text, now) {
		if rd, ok := ResolveCandidates(r.Resolution.Values, now); ok {
			resolved, found = rd, true
		}
	}
	return resolved, found
}

// Ensure Parser implements Recognizer
var _ Recognizer = (*Parser)(nil)
