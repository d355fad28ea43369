package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLegacyEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LuisAppId", "LuisAPIKey", "LuisAPIHostName", "region", "port", "PORT"} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())

	assert.Equal(t, "dev", p.Mode)
	assert.True(t, p.IsDev())
	assert.Equal(t, 3978, p.Port)
	assert.Equal(t, ":3978", p.ListenAddr())
	assert.Equal(t, ProviderRules, p.NLUProvider)
	assert.Equal(t, "en-us", p.Culture)
	assert.False(t, p.IsRedisEnabled())
}

func TestFromEnv(t *testing.T) {
	clearLegacyEnvVars(t)
	t.Setenv("LuisAppId", "app-1")
	t.Setenv("LuisAPIKey", "key-1")
	t.Setenv("LuisAPIHostName", "westus.api.cognitive.microsoft.com")
	t.Setenv("region", "westus")
	t.Setenv("PORT", "8080")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "app-1", p.LUISAppID)
	assert.Equal(t, "key-1", p.LUISAPIKey)
	assert.Equal(t, "westus.api.cognitive.microsoft.com", p.LUISHost)
	assert.Equal(t, "westus", p.LUISRegion)
	assert.Equal(t, 8080, p.Port)
}

func TestFromEnv_KeepsExplicitValues(t *testing.T) {
	clearLegacyEnvVars(t)
	t.Setenv("LuisAppId", "from-env")
	t.Setenv("port", "9000")

	p := &Profile{LUISAppID: "from-flag", Port: 3978}
	p.FromEnv()

	assert.Equal(t, "from-flag", p.LUISAppID)
	assert.Equal(t, 3978, p.Port)
}

func TestValidate(t *testing.T) {
	events := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(events, []byte("events: []\n"), 0o600))

	tests := []struct {
		name    string
		mutate  func(p *Profile)
		wantErr string
	}{
		{name: "rules", mutate: func(p *Profile) {}},
		{
			name:    "luis missing key",
			mutate:  func(p *Profile) { p.NLUProvider = "LUIS"; p.LUISAppID = "app" },
			wantErr: "app id and an API key",
		},
		{
			name: "luis missing host",
			mutate: func(p *Profile) {
				p.NLUProvider = ProviderLUIS
				p.LUISAppID = "app"
				p.LUISAPIKey = "key"
			},
			wantErr: "host or a region",
		},
		{
			name: "luis with region",
			mutate: func(p *Profile) {
				p.NLUProvider = ProviderLUIS
				p.LUISAppID = "app"
				p.LUISAPIKey = "key"
				p.LUISRegion = "westus"
			},
		},
		{
			name:    "openai missing key",
			mutate:  func(p *Profile) { p.NLUProvider = ProviderOpenAI },
			wantErr: "openai provider requires an API key",
		},
		{
			name:    "unknown provider",
			mutate:  func(p *Profile) { p.NLUProvider = "watson" },
			wantErr: `unknown NLU provider "watson"`,
		},
		{
			name:    "bad port",
			mutate:  func(p *Profile) { p.Port = 70000 },
			wantErr: "invalid port",
		},
		{
			name:    "bad timezone",
			mutate:  func(p *Profile) { p.Timezone = "Mars/Olympus" },
			wantErr: "invalid timezone",
		},
		{
			name:    "missing events file",
			mutate:  func(p *Profile) { p.EventsFile = filepath.Join(t.TempDir(), "nope.yaml") },
			wantErr: "unable to access events file",
		},
		{
			name:   "events file",
			mutate: func(p *Profile) { p.EventsFile = events },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NormalizesMode(t *testing.T) {
	p := Default()
	p.Mode = "demo"
	require.NoError(t, p.Validate())
	assert.Equal(t, "dev", p.Mode)
}

func TestLocation(t *testing.T) {
	p := Default()
	loc, err := p.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	p.Timezone = "Asia/Tokyo"
	loc, err = p.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}
