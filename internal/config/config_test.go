package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Rollover.Schedule != "0 9 1 * *" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestSaveToLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.General.Currency = "CHF"
	cfg.Storage.Backend = "redis"
	cfg.Storage.Redis.DB = 3
	cfg.Notify.Telegram = TelegramConfig{Token: "tok", ChatID: 42}

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.General.Currency != "CHF" || got.Storage.Backend != "redis" || got.Storage.Redis.DB != 3 {
		t.Fatalf("round trip lost values: %+v", got)
	}
	if got.Notify.Telegram.ChatID != 42 {
		t.Fatalf("ChatID = %d, want 42", got.Notify.Telegram.ChatID)
	}
}

func TestLoadFrom_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[storage\nbackend="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MOBIUS_STORAGE", "mongo")
	t.Setenv("MOBIUS_MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MOBIUS_TELEGRAM_CHAT_ID", "1234")
	t.Setenv("MOBIUS_LOG_LEVEL", "")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)

	if cfg.Storage.Backend != "mongo" || cfg.Storage.Mongo.URI != "mongodb://localhost:27017" {
		t.Fatalf("storage overrides not applied: %+v", cfg.Storage)
	}
	if cfg.Notify.Telegram.ChatID != 1234 {
		t.Fatalf("ChatID = %d, want 1234", cfg.Notify.Telegram.ChatID)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("empty env var overrode Log.Level to %q", cfg.Log.Level)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "mongo"
	cfg.Rollover.Schedule = "every month"
	cfg.Daemon.PollInterval = "-1s"
	cfg.Notify.Telegram.Token = "tok"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted a broken config")
	}
	for _, want := range []string{"storage.mongo.uri", "rollover.schedule", "daemon.poll_interval", "notify.telegram", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestSQLitePath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	cfg := DefaultConfig()
	if got := cfg.SQLitePath(); got != filepath.Join("/tmp/xdg", "mobius", "mobius.db") {
		t.Fatalf("SQLitePath() = %q", got)
	}
	cfg.Storage.Path = "/data/b.db"
	if got := cfg.SQLitePath(); got != "/data/b.db" {
		t.Fatalf("SQLitePath() = %q", got)
	}
}
