package router

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}},
	}, nil
}

func TestLLMRecognizer_Recognize(t *testing.T) {
	fake := &fakeCompleter{content: `{"intent":"DaysUntil","confidence":0.9,"entities":[{"type":"event","text":"Xmas"},{"type":"builtin.datetimeV2.date","text":"the 15th"}]}`}
	r := NewLLMRecognizerWithClient(fake, "")

	rec, err := r.Recognize(context.Background(), "Days until Xmas or the 15th?", "en-us")
	require.NoError(t, err)

	assert.Equal(t, openai.GPT4oMini, fake.lastReq.Model)
	require.NotNil(t, fake.lastReq.ResponseFormat)
	assert.True(t, fake.lastReq.ResponseFormat.JSONSchema.Strict)

	assert.Equal(t, IntentDaysUntil, rec.TopIntent)
	assert.Equal(t, ProviderOpenAI, rec.Provider)
	require.Len(t, rec.Entities, 2)
	assert.Equal(t, Entity{Type: EntityTypeEvent, Text: "xmas", StartIndex: 11, EndIndex: 14}, rec.Entities[0])
	assert.Equal(t, "the 15th", rec.Entities[1].Text)
	assert.Equal(t, 19, rec.Entities[1].StartIndex)
}

func TestLLMRecognizer_Recognize_Errors(t *testing.T) {
	_, err := NewLLMRecognizerWithClient(&fakeCompleter{err: errors.New("429")}, "m").
		Recognize(context.Background(), "x", "en-us")
	assert.Error(t, err)

	_, err = NewLLMRecognizerWithClient(&fakeCompleter{content: "I think DaysUntil"}, "m").
		Recognize(context.Background(), "x", "en-us")
	assert.Error(t, err)
}

func TestParseLLMResponse(t *testing.T) {
	fenced := "```json\n{\"intent\":\"none\",\"confidence\":0.2,\"entities\":[{\"type\":\"event\",\"text\":\"  \"},{\"type\":\"event\",\"text\":\"diwali\"}]}\n```"
	rec, err := parseLLMResponse("hello", fenced)
	require.NoError(t, err)
	assert.Equal(t, IntentNone, rec.TopIntent)
	require.Len(t, rec.Entities, 1)
	assert.Equal(t, -1, rec.Entities[0].StartIndex)
}

func TestRecognitionJSONSchema(t *testing.T) {
	data, err := json.Marshal(recognitionJSONSchema)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, false, decoded["additionalProperties"])
	props := decoded["properties"].(map[string]any)
	entities := props["entities"].(map[string]any)
	assert.Equal(t, "array", entities["type"])
	assert.Contains(t, entities, "items")
}
