package router

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MockRecognizer returns canned recognitions for testing.
type MockRecognizer struct {
	mu        sync.Mutex
	responses map[string]*Recognition

	// Err, when set, is returned by every call.
	Err error
	// Delay is waited before answering, or until ctx is done.
	Delay time.Duration

	calls atomic.Int64
}

// NewMockRecognizer creates a new MockRecognizer.
func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{responses: make(map[string]*Recognition)}
}

// On sets the recognition returned for utterance.
func (m *MockRecognizer) On(utterance string, intent Intent, entities ...Entity) *MockRecognizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[utterance] = &Recognition{Query: utterance, TopIntent: intent, Score: 1, Entities: entities}
	return m
}

// Calls returns how many times Recognize ran.
func (m *MockRecognizer) Calls() int64 {
	return m.calls.Load()
}

// Recognize returns the canned recognition, or intent None with no entities.
func (m *MockRecognizer) Recognize(ctx context.Context, utterance, _ string) (*Recognition, error) {
	m.calls.Add(1)
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.responses[utterance]; ok {
		return rec.clone(), nil
	}
	return &Recognition{Query: utterance, TopIntent: IntentNone}, nil
}

// Ensure MockRecognizer implements Recognizer
var _ Recognizer = (*MockRecognizer)(nil)
