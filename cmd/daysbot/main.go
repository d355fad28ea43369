package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/daysuntil/internal/profile"
	"github.com/hrygo/daysuntil/plugin/ai/timeout"
	"github.com/hrygo/daysuntil/server"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "daysbot",
	Short: `A chat bot that answers "how many days until ..." questions.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, p)
	},
}

func init() {
	def := profile.Default()
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, json, toml or .env)")
	flags.String("mode", def.Mode, `mode of server, can be "prod" or "dev"`)
	flags.String("addr", def.Addr, "address of server")
	flags.Int("port", 0, fmt.Sprintf("port of server (default %d, or $PORT)", profile.DefaultPort))
	flags.String("timezone", def.Timezone, "IANA time zone dates are evaluated in (default local)")
	flags.String("culture", def.Culture, "culture passed to the recognizer")
	flags.String("nlu-provider", def.NLUProvider, "recognizer: luis, openai or rules")

	flags.String("luis-app-id", "", "LUIS application id (or $LuisAppId)")
	flags.String("luis-api-key", "", "LUIS endpoint key (or $LuisAPIKey)")
	flags.String("luis-host", "", "LUIS endpoint host (or $LuisAPIHostName)")
	flags.String("luis-region", "", "LUIS region (or $region)")
	flags.Bool("luis-staging", false, "query the LUIS staging slot")
	flags.Bool("luis-log", false, "let LUIS log queries")

	flags.String("openai-api-key", "", "OpenAI API key")
	flags.String("openai-base-url", def.OpenAIBaseURL, "OpenAI-compatible base URL")
	flags.String("openai-model", def.OpenAIModel, "chat model used for recognition")

	flags.String("events-file", "", "YAML or ICS file of extra named events")
	flags.String("events-reload", "", `cron spec for reloading the events file, e.g. "*/15 * * * *"`)
	flags.Bool("event-rollover", false, "answer with next year's date once an event has passed")

	flags.Int("cache-capacity", def.CacheCapacity, "recognition cache entries")
	flags.Duration("cache-ttl", def.CacheTTL, "recognition cache TTL")
	flags.String("redis-addr", "", "Redis address for the shared recognition cache")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database")
	flags.String("redis-prefix", def.RedisPrefix, "Redis key prefix")

	flags.Float64("rate-limit-rps", def.RateLimitRPS, "messages per second allowed per conversation")
	flags.Int("rate-limit-burst", def.RateLimitBurst, "message burst allowed per conversation")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("daysbot")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func loadProfile() (*profile.Profile, error) {
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	p := &profile.Profile{
		Mode:           viper.GetString("mode"),
		Addr:           viper.GetString("addr"),
		Port:           viper.GetInt("port"),
		Version:        version,
		Timezone:       viper.GetString("timezone"),
		Culture:        viper.GetString("culture"),
		NLUProvider:    viper.GetString("nlu-provider"),
		LUISAppID:      viper.GetString("luis-app-id"),
		LUISAPIKey:     viper.GetString("luis-api-key"),
		LUISHost:       viper.GetString("luis-host"),
		LUISRegion:     viper.GetString("luis-region"),
		LUISStaging:    viper.GetBool("luis-staging"),
		LUISLog:        viper.GetBool("luis-log"),
		OpenAIAPIKey:   viper.GetString("openai-api-key"),
		OpenAIBaseURL:  viper.GetString("openai-base-url"),
		OpenAIModel:    viper.GetString("openai-model"),
		EventsFile:     viper.GetString("events-file"),
		EventsReload:   viper.GetString("events-reload"),
		EventRollover:  viper.GetBool("event-rollover"),
		CacheCapacity:  viper.GetInt("cache-capacity"),
		CacheTTL:       viper.GetDuration("cache-ttl"),
		RedisAddr:      viper.GetString("redis-addr"),
		RedisPassword:  viper.GetString("redis-password"),
		RedisDB:        viper.GetInt("redis-db"),
		RedisPrefix:    viper.GetString("redis-prefix"),
		RateLimitRPS:   viper.GetFloat64("rate-limit-rps"),
		RateLimitBurst: viper.GetInt("rate-limit-burst"),
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func newLogger(p *profile.Profile) *slog.Logger {
	if p.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func run(ctx context.Context, p *profile.Profile) error {
	logger := newLogger(p)
	slog.SetDefault(logger)

	s, err := server.NewServer(ctx, p, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout.ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
