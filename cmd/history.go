package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
	"github.com/theirongolddev/mobius/internal/model"
)

var historyCmd = &cobra.Command{
	Use:   "history [YYYY-MM]",
	Short: "Archived months, or the category balances of one month",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	repo, _, err := loadBudget(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	records, err := repo.LoadHistory(ctx)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(args) == 1 {
		year, month, err := parsePeriod(args[0])
		if err != nil {
			return err
		}
		rec, ok := budget.FindRecord(records, year, month)
		if !ok {
			return fmt.Errorf("no archived record for %s", args[0])
		}
		printRecord(rec)
		return nil
	}

	if len(records) == 0 {
		fmt.Println("\n  No archived months yet.")
		return nil
	}

	summary := budget.Summarize(records, time.Now())

	fmt.Println()
	fmt.Println(cli.RenderTitle("HISTORY"))
	fmt.Println()

	rows := make([][]string, 0, len(records))
	var prevSpent float64
	for i, rec := range records {
		change := "-"
		if i > 0 {
			change = cli.FormatDelta(rec.TotalSpent, prevSpent)
		}
		prevSpent = rec.TotalSpent

		balance := cli.FormatAmount(rec.TotalRemaining)
		if rec.TotalRemaining < 0 {
			balance = cli.Bad(balance)
		}
		rows = append(rows, []string{
			cli.FormatMonth(rec.Year, rec.Month),
			cli.FormatAmount(rec.TotalBudget),
			cli.FormatAmount(rec.TotalSpent),
			balance,
			change,
			cli.FormatNumber(int64(rec.ExpenseCount)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Budget", "Spent", "Balance", "vs prev", "Expenses"},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Printf("  Saved all time      %s\n", cli.Good(cli.FormatMoney(summary.TotalSavedAllTime)))
	fmt.Printf("  Overspent all time  %s\n", cli.Bad(cli.FormatMoney(summary.TotalOverspentAllTime)))
	fmt.Printf("  Average balance     %s\n", cli.FormatMoney(summary.AverageMonthlyBalance))
	if r := summary.BestSavingMonth; r != nil {
		fmt.Printf("  Best month          %s (%s)\n", cli.FormatMonth(r.Year, r.Month), cli.FormatMoney(r.TotalRemaining))
	}
	if r := summary.WorstOverspentMonth; r != nil {
		fmt.Printf("  Worst month         %s (%s)\n", cli.FormatMonth(r.Year, r.Month), cli.FormatMoney(r.TotalRemaining))
	}
	return nil
}

func printRecord(rec model.MonthlyRecord) {
	fmt.Println()
	fmt.Println(cli.RenderTitle("MONTH  " + cli.FormatMonth(rec.Year, rec.Month)))
	fmt.Println()

	rows := make([][]string, 0, len(rec.CategoryBalances)+2)
	for _, cb := range rec.CategoryBalances {
		balance := cli.FormatAmount(cb.RemainingBalance)
		if cb.RemainingBalance < 0 {
			balance = cli.Bad(balance)
		}
		rows = append(rows, []string{
			cb.CategoryName,
			cli.FormatPercent(cb.Percentage),
			cli.FormatAmount(cb.BudgetAllocated),
			cli.FormatAmount(cb.TotalSpent),
			balance,
		})
	}
	rows = append(rows, cli.SeparatorRow, []string{
		"Total", "",
		cli.FormatAmount(rec.TotalBudget),
		cli.FormatAmount(rec.TotalSpent),
		cli.FormatAmount(rec.TotalRemaining),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Share", "Allocated", "Spent", "Balance"},
		Rows:    rows,
	}))
	fmt.Printf("\n  %d expenses, closed %s\n", rec.ExpenseCount, cli.FormatDate(rec.ResetDate))
}

// parsePeriod parses a YYYY-MM month reference.
func parsePeriod(s string) (int, int, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return t.Year(), int(t.Month()), nil
}
