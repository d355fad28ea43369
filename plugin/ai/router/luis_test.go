package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const luisPayload = `{
  "query": "how many days until xmas",
  "topScoringIntent": {"intent": "DaysUntil", "score": 0.97},
  "entities": [
    {"entity": "xmas", "type": "event", "startIndex": 20, "endIndex": 23, "score": 0.92},
    {"entity": "xmas", "type": "builtin.datetimeV2.date", "startIndex": 20, "endIndex": 23}
  ]
}`

func TestLUISConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LUISConfig
		wantErr bool
	}{
		{"complete", LUISConfig{AppID: "app", APIKey: "key", Region: "westus"}, false},
		{"host instead of region", LUISConfig{AppID: "app", APIKey: "key", Host: "example.com"}, false},
		{"missing app id", LUISConfig{APIKey: "key", Region: "westus"}, true},
		{"missing key", LUISConfig{AppID: "app", Region: "westus"}, true},
		{"missing host and region", LUISConfig{AppID: "app", APIKey: "key"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLUISClient(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLUISClient_Recognize(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(luisPayload))
	}))
	defer srv.Close()

	client, err := NewLUISClient(LUISConfig{AppID: "app-1", APIKey: "secret", Host: srv.URL, Staging: true})
	require.NoError(t, err)

	rec, err := client.Recognize(context.Background(), "how many days until xmas", "en-us")
	require.NoError(t, err)

	assert.Equal(t, "/luis/v2.0/apps/app-1", gotPath)
	assert.Equal(t, "how many days until xmas", gotQuery["q"][0])
	assert.Equal(t, "true", gotQuery["verbose"][0])
	assert.Equal(t, "true", gotQuery["staging"][0])
	assert.Equal(t, "false", gotQuery["log"][0])
	assert.Equal(t, "secret", gotQuery["subscription-key"][0])

	assert.Equal(t, IntentDaysUntil, rec.TopIntent)
	assert.InDelta(t, 0.97, rec.Score, 1e-9)
	assert.Equal(t, ProviderLUIS, rec.Provider)
	require.Len(t, rec.Entities, 2)
	top := rec.TopEntity()
	require.NotNil(t, top)
	assert.Equal(t, EntityTypeEvent, top.Type)
	assert.Equal(t, "xmas", top.Text)
	assert.Equal(t, 20, top.StartIndex)
}

func TestLUISClient_Recognize_NoIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"query":"hi","entities":[]}`))
	}))
	defer srv.Close()

	client, err := NewLUISClient(LUISConfig{AppID: "a", APIKey: "k", Host: srv.URL})
	require.NoError(t, err)

	rec, err := client.Recognize(context.Background(), "hi", "en-us")
	require.NoError(t, err)
	assert.Equal(t, IntentNone, rec.TopIntent)
	assert.False(t, rec.HasIntent())
	assert.Nil(t, rec.TopEntity())
}

func TestLUISClient_Recognize_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"quota"}`, http.StatusForbidden)
		}))
		defer srv.Close()

		client, err := NewLUISClient(LUISConfig{AppID: "a", APIKey: "k", Host: srv.URL})
		require.NoError(t, err)
		_, err = client.Recognize(context.Background(), "hi", "en-us")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		client, err := NewLUISClient(LUISConfig{AppID: "a", APIKey: "k", Host: srv.URL})
		require.NoError(t, err)
		_, err = client.Recognize(context.Background(), "hi", "en-us")
		assert.Error(t, err)
	})

	t.Run("canceled", func(t *testing.T) {
		client, err := NewLUISClient(LUISConfig{AppID: "a", APIKey: "k", Host: "http://127.0.0.1:1"})
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = client.Recognize(ctx, "hi", "en-us")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
