package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/export"
	"github.com/theirongolddev/mobius/internal/log"
)

var (
	flagExportMonth   string
	flagExportOutput  string
	flagExportHistory bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a CSV report of the current month, an archived month, or all history",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportMonth, "month", "m", "", "Archived month YYYY-MM (default current month)")
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVar(&flagExportHistory, "history", false, "Export one row per archived month")
	exportCmd.MarkFlagsMutuallyExclusive("month", "history")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) (err error) {
	ctx := commandContext(cmd)
	repo, b, err := loadBudget(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	var w io.Writer = os.Stdout
	if flagExportOutput != "" {
		f, ferr := os.Create(flagExportOutput)
		if ferr != nil {
			return fmt.Errorf("create %s: %w", flagExportOutput, ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	logger := log.For(log.ComponentExport)
	switch {
	case flagExportHistory:
		records, err := repo.LoadHistory(ctx)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
		err = export.WriteHistoryCSV(w, records)
		logger.Debug("history exported", "records", len(records), "output", flagExportOutput)
		return err

	case flagExportMonth != "":
		year, month, err := parsePeriod(flagExportMonth)
		if err != nil {
			return err
		}
		records, err := repo.LoadHistory(ctx)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
		rec, ok := budget.FindRecord(records, year, month)
		if !ok {
			return fmt.Errorf("no archived record for %s", flagExportMonth)
		}
		logger.Debug("month exported", log.NewFields().WithPeriod(rec.Year, rec.Month, rec.Key()).Args()...)
		return export.WriteMonthlyCSV(w, rec)

	default:
		logger.Debug("current month exported", "expenses", len(b.Expenses))
		return export.WriteCurrentCSV(w, b, time.Now())
	}
}
