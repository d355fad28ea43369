package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ChatCompleter is the part of the OpenAI client the LLM recognizer uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMConfig holds configuration for the LLM recognizer.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// LLMRecognizer asks an OpenAI-compatible chat model for the intent and
// entities of an utterance under a strict JSON schema.
type LLMRecognizer struct {
	client ChatCompleter
	model  string
}

// NewLLMRecognizer creates a recognizer backed by the OpenAI API.
func NewLLMRecognizer(cfg LLMConfig) *LLMRecognizer {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return NewLLMRecognizerWithClient(openai.NewClientWithConfig(clientConfig), cfg.Model)
}

// NewLLMRecognizerWithClient creates a recognizer over an existing client.
func NewLLMRecognizerWithClient(client ChatCompleter, model string) *LLMRecognizer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &LLMRecognizer{client: client, model: model}
}

// Recognize classifies utterance with the chat model.
func (r *LLMRecognizer) Recognize(ctx context.Context, utterance, culture string) (*Recognition, error) {
	req := openai.ChatCompletionRequest{
		Model:       r.model,
		MaxTokens:   200,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: recognitionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Culture: %s\nUtterance: %s", culture, utterance)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "days_until_recognition",
				Strict: true,
				Schema: recognitionJSONSchema,
			},
		},
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from LLM")
	}

	rec, err := parseLLMResponse(utterance, resp.Choices[0].Message.Content)
	if err != nil {
		slog.Warn("failed to parse LLM response",
			"content", truncate(resp.Choices[0].Message.Content, 200),
			"error", err)
		return nil, err
	}

	slog.Debug("LLM recognition completed",
		"input", truncate(utterance, 50),
		"intent", rec.TopIntent,
		"entities", len(rec.Entities),
		"latency_ms", latency.Milliseconds(),
		"tokens", resp.Usage.TotalTokens)

	return rec, nil
}

var codeFence = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

func parseLLMResponse(utterance, content string) (*Recognition, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if m := codeFence.FindStringSubmatch(content); len(m) > 1 {
			content = m[1]
		}
	}

	var raw struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
		Entities   []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"entities"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	rec := &Recognition{
		Query:     utterance,
		TopIntent: IntentNone,
		Score:     raw.Confidence,
		Provider:  ProviderOpenAI,
	}
	if strings.EqualFold(raw.Intent, string(IntentDaysUntil)) {
		rec.TopIntent = IntentDaysUntil
	}

	lower := strings.ToLower(utterance)
	for _, e := range raw.Entities {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		ent := Entity{Type: e.Type, Text: strings.ToLower(text), StartIndex: -1, EndIndex: -1}
		if i := strings.Index(lower, ent.Text); i >= 0 {
			ent.StartIndex = i
			ent.EndIndex = i + len(ent.Text) - 1
		}
		rec.Entities = append(rec.Entities, ent)
	}
	return rec, nil
}

const recognitionSystemPrompt = `You classify chat messages for a bot that answers how many days remain until a date.

intent:
DaysUntil: the user asks how long until an event or a date
None: anything else

entities, in order of importance:
event: a named holiday such as "xmas" or "christmas", text exactly as written
builtin.datetimeV2.date: a single date such as "march 15th" or "tomorrow"
builtin.datetimeV2.daterange: a date range or period such as "next week" or "between dec 1 and dec 5"

Copy entity text verbatim from the message.`

var recognitionJSONSchema = &jsonSchema{
	Type: "object",
	Properties: map[string]*jsonSchema{
		"intent": {
			Type:        "string",
			Enum:        []string{string(IntentDaysUntil), string(IntentNone)},
			Description: "The classified intent",
		},
		"confidence": {
			Type:        "number",
			Description: "Confidence score between 0 and 1",
		},
		"entities": {
			Type: "array",
			Items: &jsonSchema{
				Type: "object",
				Properties: map[string]*jsonSchema{
					"type": {
						Type: "string",
						Enum: []string{EntityTypeEvent, EntityTypeDate, EntityTypeDateRange},
					},
					"text": {
						Type:        "string",
						Description: "Entity text as written in the message",
					},
				},
				Required:             []string{"type", "text"},
				AdditionalProperties: false,
			},
		},
	},
	Required:             []string{"intent", "confidence", "entities"},
	AdditionalProperties: false,
}

// jsonSchema implements json.Marshaler for OpenAI's JSON Schema format.
type jsonSchema struct {
	Type                 string                 `json:"type"`
	Properties           map[string]*jsonSchema `json:"properties,omitempty"`
	Items                *jsonSchema            `json:"items,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Description          string                 `json:"description,omitempty"`
	AdditionalProperties bool                   `json:"additionalProperties"`
}

func (s *jsonSchema) MarshalJSON() ([]byte, error) {
	type alias jsonSchema
	return json.Marshal((*alias)(s))
}

var _ Recognizer = (*LLMRecognizer)(nil)
var _ ChatCompleter = (*openai.Client)(nil)
