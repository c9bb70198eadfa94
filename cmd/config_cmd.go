package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mobius/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	path := configPath()

	fmt.Printf("  Config file: %s\n", path)
	if _, err := os.Stat(path); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currency: %s\n", cfg.General.Currency)
	if cfg.General.Locale != "" {
		fmt.Printf("    Locale:   %s\n", cfg.General.Locale)
	}
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Backend: %s\n", backendName())
	switch backendName() {
	case store.BackendSQLite:
		fmt.Printf("    Path:    %s\n", cfg.SQLitePath())
	case store.BackendMongo:
		fmt.Printf("    URI:      %s\n", maskSecret(cfg.Storage.Mongo.URI))
		fmt.Printf("    Database: %s\n", cfg.Storage.Mongo.Database)
	case store.BackendRedis:
		fmt.Printf("    Addr:     %s (db %d)\n", cfg.Storage.Redis.Addr, cfg.Storage.Redis.DB)
		fmt.Printf("    Prefix:   %s\n", cfg.Storage.Redis.Prefix)
		if cfg.Storage.Redis.Password != "" {
			fmt.Printf("    Password: %s\n", maskSecret(cfg.Storage.Redis.Password))
		}
	}
	fmt.Println()

	fmt.Println("  [Rollover]")
	fmt.Printf("    Schedule: %s\n", cfg.Rollover.Schedule)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Poll interval: %s\n", cfg.PollEvery())
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Notify]")
	if cfg.Notify.AMQP.URL != "" {
		fmt.Printf("    AMQP:     %s -> %s\n", maskSecret(cfg.Notify.AMQP.URL), cfg.Notify.AMQP.Exchange)
	} else {
		fmt.Println("    AMQP:     not configured")
	}
	if cfg.Notify.Telegram.Token != "" {
		fmt.Printf("    Telegram: %s (chat %d)\n", maskSecret(cfg.Notify.Telegram.Token), cfg.Notify.Telegram.ChatID)
	} else {
		fmt.Println("    Telegram: not configured")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  Run `mobius setup` to reconfigure.")
	return nil
}

// maskSecret keeps the first and last four characters of s.
func maskSecret(s string) string {
	if len(s) <= 12 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
