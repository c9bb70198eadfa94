package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
)

var flagDailyAll bool

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily spending for the current month",
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().BoolVarP(&flagDailyAll, "all", "a", false, "Include days with no expenses")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
	repo, b, err := loadBudget(commandContext(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	now := time.Now()
	since, until := budget.MonthBounds(now)
	if today := budget.Day(now); today.Before(until) {
		until = today
	}
	days := budget.DailySeries(b.Expenses, since, until)

	fmt.Println()
	fmt.Println(cli.RenderTitle("DAILY SPENDING  " + cli.FormatMonth(b.Year, b.Month)))
	fmt.Println()

	values := make([]float64, len(days))
	rows := make([][]string, 0, len(days))
	for i, d := range days {
		values[i] = d.Amount
		if d.Count == 0 && !flagDailyAll {
			continue
		}
		rows = append(rows, []string{
			cli.FormatDate(d.Date),
			cli.FormatDayOfWeek(d.Date.Weekday()),
			cli.FormatNumber(int64(d.Count)),
			cli.FormatAmount(d.Amount),
		})
	}

	if len(rows) == 0 {
		fmt.Println("  No expenses this month.")
		return nil
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Expenses", "Amount"},
		Rows:    rows,
	}))

	an := budget.ComputeAnalytics(b.Categories, b.Expenses, b.TotalBudget, now)
	fmt.Println()
	fmt.Printf("  %s  %s\n", cli.Muted("Trend"), cli.RenderSparkline(values))
	fmt.Printf("  %s  %s/day over the last 7 days (%s vs previous week)\n",
		cli.Muted("Avg  "), cli.FormatMoney(an.DailyAverage), cli.FormatTrend(an.WeeklyTrend))
	return nil
}
