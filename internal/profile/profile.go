package profile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/daysuntil/server/timezone"
)

// DefaultPort is the port the bot listens on when none is configured.
const DefaultPort = 3978

// NLU providers.
const (
	ProviderLUIS   = "luis"
	ProviderOpenAI = "openai"
	ProviderRules  = "rules"
)

// Profile is the configuration to start the bot server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Version is the current version of server
	Version string

	// Timezone names the IANA zone dates are evaluated in. Empty means local.
	Timezone string
	// Culture is passed to the recognizer.
	Culture string

	// NLUProvider selects the recognizer: luis, openai or rules.
	NLUProvider string

	LUISAppID   string // DAYSBOT_LUIS_APP_ID (legacy: LuisAppId)
	LUISAPIKey  string // DAYSBOT_LUIS_API_KEY (legacy: LuisAPIKey)
	LUISHost    string // DAYSBOT_LUIS_HOST (legacy: LuisAPIHostName)
	LUISRegion  string // DAYSBOT_LUIS_REGION (legacy: region)
	LUISStaging bool   // DAYSBOT_LUIS_STAGING
	LUISLog     bool   // DAYSBOT_LUIS_LOG

	OpenAIAPIKey  string // DAYSBOT_OPENAI_API_KEY
	OpenAIBaseURL string // DAYSBOT_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	OpenAIModel   string // DAYSBOT_OPENAI_MODEL (default: gpt-4o-mini)

	// EventsFile is a YAML file of extra named events.
	EventsFile string
	// EventsReload is a cron spec for reloading EventsFile. Empty disables it.
	EventsReload string
	// EventRollover answers with next year's date once an event has passed.
	EventRollover bool

	CacheCapacity int
	CacheTTL      time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Default returns a profile with every default applied.
func Default() *Profile {
	return &Profile{
		Mode:           "dev",
		Port:           DefaultPort,
		Version:        "dev",
		Culture:        "en-us",
		NLUProvider:    ProviderRules,
		OpenAIBaseURL:  "https://api.openai.com/v1",
		OpenAIModel:    "gpt-4o-mini",
		CacheCapacity:  1000,
		CacheTTL:       10 * time.Minute,
		RedisPrefix:    "daysbot:",
		RateLimitRPS:   10,
		RateLimitBurst: 20,
	}
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsRedisEnabled reports whether a shared recognition cache is configured.
func (p *Profile) IsRedisEnabled() bool {
	return p.RedisAddr != ""
}

// ListenAddr returns the host:port the server binds to.
func (p *Profile) ListenAddr() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}

// Location loads the configured time zone.
func (p *Profile) Location() (*time.Location, error) {
	loc, err := timezone.ParseTimezone(p.Timezone, time.Local)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return loc, nil
}

// FromEnv fills fields that are still empty from the environment variables
// the bot was historically deployed with.
func (p *Profile) FromEnv() {
	setString := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, key := range keys {
			if val := os.Getenv(key); val != "" {
				*dst = val
				return
			}
		}
	}

	setString(&p.LUISAppID, "LuisAppId")
	setString(&p.LUISAPIKey, "LuisAPIKey")
	setString(&p.LUISHost, "LuisAPIHostName")
	setString(&p.LUISRegion, "region")

	if p.Port == 0 {
		for _, key := range []string{"port", "PORT"} {
			if port, err := strconv.Atoi(os.Getenv(key)); err == nil && port > 0 {
				p.Port = port
				break
			}
		}
	}
}

// Validate normalizes the profile and checks that the selected provider is
// fully configured.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Port == 0 {
		p.Port = DefaultPort
	}
	if p.Port < 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}
	if p.Culture == "" {
		p.Culture = "en-us"
	}

	p.NLUProvider = strings.ToLower(strings.TrimSpace(p.NLUProvider))
	switch p.NLUProvider {
	case "":
		p.NLUProvider = ProviderRules
	case ProviderRules:
	case ProviderLUIS:
		if p.LUISAppID == "" || p.LUISAPIKey == "" {
			return errors.New("luis provider requires an app id and an API key")
		}
		if p.LUISHost == "" && p.LUISRegion == "" {
			return errors.New("luis provider requires a host or a region")
		}
	case ProviderOpenAI:
		if p.OpenAIAPIKey == "" {
			return errors.New("openai provider requires an API key")
		}
	default:
		return errors.Errorf("unknown NLU provider %q", p.NLUProvider)
	}

	if _, err := p.Location(); err != nil {
		return err
	}
	if p.EventsFile != "" {
		if _, err := os.Stat(p.EventsFile); err != nil {
			return errors.Wrapf(err, "unable to access events file %s", p.EventsFile)
		}
	}
	if p.RateLimitRPS < 0 || p.RateLimitBurst < 0 {
		return errors.New("rate limit must not be negative")
	}
	return nil
}
