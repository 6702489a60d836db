package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Round   RoundConfig   `mapstructure:"round"`
	Trading TradingConfig `mapstructure:"trading"`
	Feed    FeedConfig    `mapstructure:"feed"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

// RoundConfig drives the round lifecycle: how long a betting window lasts,
// how long after its end a round becomes eligible for settlement, and how
// often the scheduler ticks. TickInterval must stay below WindowLength so a
// slot is never skipped.
type RoundConfig struct {
	WindowLength    time.Duration `mapstructure:"window_length"`
	SettlementGrace time.Duration `mapstructure:"settlement_grace"`
	TickInterval    time.Duration `mapstructure:"tick_interval"`
	EntryCutoff     time.Duration `mapstructure:"entry_cutoff"`
}

type TradingConfig struct {
	Symbol     string  `mapstructure:"symbol"`
	MinWager   int64   `mapstructure:"min_wager"`
	MaxWager   int64   `mapstructure:"max_wager"`
	PayoutRate float64 `mapstructure:"payout_rate"`
}

type FeedConfig struct {
	Provider    string        `mapstructure:"provider"`
	Endpoint    string        `mapstructure:"endpoint"`
	WSURL       string        `mapstructure:"ws_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	StaleAfter  time.Duration `mapstructure:"stale_after"`
	StaticPrice float64       `mapstructure:"static_price"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("UPDOWN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("round.window_length", "60s")
	v.SetDefault("round.settlement_grace", "3s")
	v.SetDefault("round.tick_interval", "5s")
	v.SetDefault("round.entry_cutoff", "5s")
	v.SetDefault("trading.symbol", "BTCUSDT")
	v.SetDefault("trading.min_wager", 100000)
	v.SetDefault("trading.max_wager", 0)
	v.SetDefault("trading.payout_rate", 0.8)
	v.SetDefault("feed.provider", "binance_rest")
	v.SetDefault("feed.endpoint", "https://api.binance.com/api/v3/ticker/price")
	v.SetDefault("feed.ws_url", "wss://stream.binance.com:9443/ws")
	v.SetDefault("feed.timeout", "10s")
	v.SetDefault("feed.stale_after", "30s")
	v.SetDefault("feed.static_price", 0)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Round.WindowLength <= 0 {
		return fmt.Errorf("round.window_length must be positive, got %s", c.Round.WindowLength)
	}
	if c.Round.TickInterval <= 0 {
		return fmt.Errorf("round.tick_interval must be positive, got %s", c.Round.TickInterval)
	}
	if c.Round.TickInterval >= c.Round.WindowLength {
		return fmt.Errorf("round.tick_interval %s must be shorter than round.window_length %s",
			c.Round.TickInterval, c.Round.WindowLength)
	}
	if c.Round.SettlementGrace < 0 {
		return fmt.Errorf("round.settlement_grace must not be negative, got %s", c.Round.SettlementGrace)
	}
	if c.Round.EntryCutoff < 0 || c.Round.EntryCutoff >= c.Round.WindowLength {
		return fmt.Errorf("round.entry_cutoff %s must be within [0, window_length)", c.Round.EntryCutoff)
	}
	if c.Trading.MinWager <= 0 {
		return fmt.Errorf("trading.min_wager must be positive, got %d", c.Trading.MinWager)
	}
	if c.Trading.MaxWager > 0 && c.Trading.MaxWager < c.Trading.MinWager {
		return fmt.Errorf("trading.max_wager %d is below trading.min_wager %d", c.Trading.MaxWager, c.Trading.MinWager)
	}
	if c.Trading.PayoutRate <= 0 || c.Trading.PayoutRate > 1 {
		return fmt.Errorf("trading.payout_rate must be in (0, 1], got %g", c.Trading.PayoutRate)
	}
	switch c.Feed.Provider {
	case "static", "binance_rest", "binance_ws":
	default:
		return fmt.Errorf("unknown feed.provider %q", c.Feed.Provider)
	}
	return nil
}
