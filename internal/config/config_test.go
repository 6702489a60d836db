package config

import (
	"testing"
	"time"
)

func defaultConfig() Config {
	return Config{
		Round: RoundConfig{
			WindowLength:    60 * time.Second,
			SettlementGrace: 3 * time.Second,
			TickInterval:    5 * time.Second,
			EntryCutoff:     5 * time.Second,
		},
		Trading: TradingConfig{
			Symbol:     "BTCUSDT",
			MinWager:   100000,
			PayoutRate: 0.8,
		},
		Feed: FeedConfig{Provider: "static"},
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.Round.WindowLength = 0 }},
		{"zero tick", func(c *Config) { c.Round.TickInterval = 0 }},
		{"tick >= window", func(c *Config) { c.Round.TickInterval = time.Minute }},
		{"negative grace", func(c *Config) { c.Round.SettlementGrace = -time.Second }},
		{"cutoff >= window", func(c *Config) { c.Round.EntryCutoff = time.Minute }},
		{"zero min wager", func(c *Config) { c.Trading.MinWager = 0 }},
		{"max below min", func(c *Config) { c.Trading.MaxWager = 1 }},
		{"zero payout rate", func(c *Config) { c.Trading.PayoutRate = 0 }},
		{"payout rate above one", func(c *Config) { c.Trading.PayoutRate = 1.5 }},
		{"unknown feed provider", func(c *Config) { c.Feed.Provider = "oracle" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
