package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "123:abc"
data_source:
  symbols: ["BTC", "ETH"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.BotToken != "123:abc" {
		t.Errorf("token = %q", cfg.Telegram.BotToken)
	}
	if len(cfg.DataSource.Symbols) != 2 || cfg.DataSource.Symbols[0] != "BTC" {
		t.Errorf("symbols = %v", cfg.DataSource.Symbols)
	}
	if cfg.Schedule.RefreshCron != "0 */3 * * * *" {
		t.Errorf("refresh cron default = %q", cfg.Schedule.RefreshCron)
	}
	if cfg.Schedule.NotifyCron != "0 */15 * * * *" {
		t.Errorf("notify cron default = %q", cfg.Schedule.NotifyCron)
	}
	if cfg.Database.SQLitePath != "data/trading_bot.db" {
		t.Errorf("sqlite path default = %q", cfg.Database.SQLitePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("a missing config file must not be fatal, got %v", err)
	}
	if len(cfg.DataSource.Symbols) == 0 {
		t.Error("expected the default symbol universe")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "file-token"
data_source:
  symbols: ["BTC"]
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SYMBOLS", "SOL,XRP")
	t.Setenv("SQLITE_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Errorf("env token should win, got %q", cfg.Telegram.BotToken)
	}
	if len(cfg.DataSource.Symbols) != 2 || cfg.DataSource.Symbols[1] != "XRP" {
		t.Errorf("symbols = %v, want [SOL XRP]", cfg.DataSource.Symbols)
	}
	if cfg.Database.SQLitePath != "/tmp/override.db" {
		t.Errorf("sqlite path = %q", cfg.Database.SQLitePath)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error without a bot token")
	}
	cfg.Telegram.BotToken = "123:abc"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error without symbols")
	}
	cfg.DataSource.Symbols = []string{"BTC"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}
