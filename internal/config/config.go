package config

import "fmt"

type Config struct {
	Env               string
	DatabaseURL       string
	DiscordToken      string
	DiscordGuildID    string
	MinPlayers        int
	IntroSeconds      int
	AutoplayEnabled   bool
	ResultsWebhookURL string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.MinPlayers <= 0 {
		return fmt.Errorf("MIN_PLAYERS must be positive, got %d", c.MinPlayers)
	}
	if c.IntroSeconds <= 0 {
		return fmt.Errorf("INTRO_SECONDS must be positive, got %d", c.IntroSeconds)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
