package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/clockworklab/mafiagram/internal/config"
)

type envConfig struct {
	Env               string `env:"ENV" envDefault:"production"`
	DatabaseURL       string `env:"DATABASE_URL,required"`
	DiscordToken      string `env:"DISCORD_TOKEN,required"`
	DiscordGuildID    string `env:"DISCORD_GUILD_ID,required"`
	MinPlayers        int    `env:"MIN_PLAYERS" envDefault:"5"`
	IntroSeconds      int    `env:"INTRO_SECONDS" envDefault:"10"`
	AutoplayEnabled   bool   `env:"AUTOPLAY_ENABLED" envDefault:"true"`
	ResultsWebhookURL string `env:"RESULTS_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:               raw.Env,
		DatabaseURL:       raw.DatabaseURL,
		DiscordToken:      raw.DiscordToken,
		DiscordGuildID:    raw.DiscordGuildID,
		MinPlayers:        raw.MinPlayers,
		IntroSeconds:      raw.IntroSeconds,
		AutoplayEnabled:   raw.AutoplayEnabled,
		ResultsWebhookURL: raw.ResultsWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
