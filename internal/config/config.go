package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
	} `yaml:"telegram"`
	DataSource struct {
		BinanceURL   string   `yaml:"binance_url"`
		SentimentURL string   `yaml:"sentiment_url"`
		Symbols      []string `yaml:"symbols"`
	} `yaml:"data_source"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		NotifyCron  string `yaml:"notify_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.DataSource.BinanceURL = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.DataSource.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if len(cfg.DataSource.Symbols) == 0 {
		cfg.DataSource.Symbols = []string{"BTC", "ETH", "SOL", "BNB", "XRP"}
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */3 * * * *"
	}
	if cfg.Schedule.NotifyCron == "" {
		cfg.Schedule.NotifyCron = "0 */15 * * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trading_bot.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if len(c.DataSource.Symbols) == 0 {
		return fmt.Errorf("data_source.symbols must not be empty")
	}
	return nil
}
