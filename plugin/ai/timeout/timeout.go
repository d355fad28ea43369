// Package timeout defines centralized timeouts and limits for recognition
// and request handling.
package timeout

import "time"

const (
	// RecognitionTimeout bounds a single remote NLU call.
	RecognitionTimeout = 5 * time.Second

	// LLMRecognitionTimeout bounds a chat-model recognition, which is slower.
	LLMRecognitionTimeout = 10 * time.Second

	// TurnTimeout bounds handling of one inbound activity.
	TurnTimeout = 15 * time.Second

	// ShutdownTimeout is how long the server waits for in-flight requests.
	ShutdownTimeout = 10 * time.Second

	// MaxConcurrentRecognitions caps in-flight remote NLU calls.
	MaxConcurrentRecognitions = 16

	// MaxUtteranceLength is the longest utterance accepted, in bytes.
	MaxUtteranceLength = 1000
)
