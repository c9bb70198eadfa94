package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all mobius configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Storage    StorageConfig    `toml:"storage"`
	Rollover   RolloverConfig   `toml:"rollover"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Notify     NotifyConfig     `toml:"notify"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Currency string `toml:"currency"`
	Locale   string `toml:"locale"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Backend string      `toml:"backend"` // sqlite, mongo, redis, memory
	Path    string      `toml:"path,omitempty"`
	Mongo   MongoConfig `toml:"mongo"`
	Redis   RedisConfig `toml:"redis"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string `toml:"uri,omitempty"`
	Database string `toml:"database"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// RolloverConfig controls when the daemon checks for a month change.
type RolloverConfig struct {
	Schedule string `toml:"schedule"`
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	PollInterval string `toml:"poll_interval"`
	EventsBuffer int    `toml:"events_buffer"`
}

// NotifyConfig holds the optional event sinks.
type NotifyConfig struct {
	AMQP     AMQPConfig     `toml:"amqp"`
	Telegram TelegramConfig `toml:"telegram"`
}

// AMQPConfig configures the RabbitMQ publisher.
type AMQPConfig struct {
	URL      string `toml:"url,omitempty"`
	Exchange string `toml:"exchange"`
	Queue    string `toml:"queue"`
}

// TelegramConfig configures the Telegram notifier.
type TelegramConfig struct {
	Token  string `toml:"token,omitempty"`
	ChatID int64  `toml:"chat_id,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency: "EUR",
			Locale:   "it",
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			Mongo:   MongoConfig{Database: "mobius"},
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "mobius"},
		},
		Rollover: RolloverConfig{
			Schedule: "0 9 1 * *",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8765",
			PollInterval: "15s",
			EventsBuffer: 200,
		},
		Notify: NotifyConfig{
			AMQP: AMQPConfig{Exchange: "mobius", Queue: "mobius.events"},
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mobius")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mobius")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "mobius")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "mobius")
}

// SQLitePath returns the configured database path or the default one.
func (c Config) SQLitePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(DataDir(), "mobius.db")
}

// PollEvery parses Daemon.PollInterval.
func (c Config) PollEvery() time.Duration {
	d, err := time.ParseDuration(c.Daemon.PollInterval)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path. A missing file is not an error.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	_ = godotenv.Load()
	ApplyEnv(&cfg)
	return cfg, nil
}

// ApplyEnv overrides cfg with any MOBIUS_* variables that are set.
func ApplyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("MOBIUS_CURRENCY", &cfg.General.Currency)
	setString("MOBIUS_STORAGE", &cfg.Storage.Backend)
	setString("MOBIUS_DB_PATH", &cfg.Storage.Path)
	setString("MOBIUS_MONGO_URI", &cfg.Storage.Mongo.URI)
	setString("MOBIUS_MONGO_DATABASE", &cfg.Storage.Mongo.Database)
	setString("MOBIUS_REDIS_ADDR", &cfg.Storage.Redis.Addr)
	setString("MOBIUS_REDIS_PASSWORD", &cfg.Storage.Redis.Password)
	setString("MOBIUS_ROLLOVER_SCHEDULE", &cfg.Rollover.Schedule)
	setString("MOBIUS_DAEMON_ADDR", &cfg.Daemon.Addr)
	setString("MOBIUS_AMQP_URL", &cfg.Notify.AMQP.URL)
	setString("MOBIUS_TELEGRAM_TOKEN", &cfg.Notify.Telegram.Token)
	setString("MOBIUS_LOG_LEVEL", &cfg.Log.Level)
	setString("MOBIUS_LOG_FORMAT", &cfg.Log.Format)

	if v := os.Getenv("MOBIUS_TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Notify.Telegram.ChatID = id
		}
	}
}

// Validate reports every problem in cfg at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case "sqlite", "memory":
	case "mongo":
		if c.Storage.Mongo.URI == "" {
			errs = append(errs, errors.New("storage.mongo.uri is required for the mongo backend"))
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of sqlite, mongo, redis, memory", c.Storage.Backend))
	}

	if _, err := cron.ParseStandard(c.Rollover.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("rollover.schedule: %w", err))
	}
	if d, err := time.ParseDuration(c.Daemon.PollInterval); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("daemon.poll_interval %q is not a positive duration", c.Daemon.PollInterval))
	}
	if (c.Notify.Telegram.Token == "") != (c.Notify.Telegram.ChatID == 0) {
		errs = append(errs, errors.New("notify.telegram needs both token and chat_id"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes cfg to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is the user's own config
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
