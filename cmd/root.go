// Package cmd implements the mobius CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
	"github.com/theirongolddev/mobius/internal/config"
	"github.com/theirongolddev/mobius/internal/log"
	"github.com/theirongolddev/mobius/internal/model"
	"github.com/theirongolddev/mobius/internal/store"
)

var (
	flagConfig  string
	flagStorage string
	flagDBPath  string
	flagQuiet   bool
	flagVerbose bool
)

// appCfg is the effective configuration, loaded before any command runs.
var appCfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "mobius",
	Short:             "Monthly budget tracker",
	Long:              "Track expenses against a monthly budget split into categories.",
	SilenceUsage:      true,
	PersistentPreRunE: setupRuntime,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVarP(&flagStorage, "storage", "s", "", "Storage backend: sqlite, mongo, redis")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress notices on stderr")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}

// setupRuntime loads the config, applies flag overrides and installs the
// default logger.
func setupRuntime(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		return err
	}
	if flagStorage != "" {
		cfg.Storage.Backend = flagStorage
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s:\n%w", configPath(), err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = slog.LevelDebug
	}
	logCfg := log.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = cfg.Log.Format
	log.SetDefault(log.New(logCfg))

	cli.SetCurrency(cfg.General.Currency)
	appCfg = cfg
	return nil
}

func storeOptions(cfg config.Config) store.Options {
	return store.Options{
		Backend:       cfg.Storage.Backend,
		SQLitePath:    cfg.SQLitePath(),
		MongoURI:      cfg.Storage.Mongo.URI,
		MongoDatabase: cfg.Storage.Mongo.Database,
		Redis: store.RedisOptions{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
			Prefix:   cfg.Storage.Redis.Prefix,
		},
	}
}

func openRepo(ctx context.Context) (budget.Repository, error) {
	repo, err := store.Open(ctx, storeOptions(appCfg))
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", backendName(), err)
	}
	return repo, nil
}

func backendName() string {
	if appCfg.Storage.Backend == "" {
		return store.BackendSQLite
	}
	return appCfg.Storage.Backend
}

var errNoBudget = errors.New("no budget configured yet, run `mobius setup` first")

// loadBudget opens the repository and runs the rollover check once, so
// every data command sees the current month. The caller closes repo.
func loadBudget(ctx context.Context) (budget.Repository, model.BudgetData, error) {
	repo, err := openRepo(ctx)
	if err != nil {
		return nil, model.BudgetData{}, err
	}

	res, err := budget.NewRollover(repo, nil).Check(ctx, time.Now())
	if err != nil {
		_ = repo.Close()
		if errors.Is(err, budget.ErrNoBudget) {
			return nil, model.BudgetData{}, errNoBudget
		}
		return nil, model.BudgetData{}, err
	}
	if res.ArchiveErr != nil {
		notice("  Warning: previous month could not be archived: %v\n", res.ArchiveErr)
	}
	if res.Reset {
		notice("  New month started, %s closed with %s remaining\n",
			cli.FormatMonth(res.Record.Year, res.Record.Month), cli.FormatMoney(res.Record.TotalRemaining))
	}
	return repo, res.Budget, nil
}

// saveBudget writes b back through repo.
func saveBudget(ctx context.Context, repo budget.Repository, b model.BudgetData) error {
	if err := repo.Save(ctx, b); err != nil {
		return fmt.Errorf("saving budget: %w", err)
	}
	return nil
}

func notice(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
