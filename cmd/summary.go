package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Spending summary for the current month",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	repo, b, err := loadBudget(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	now := time.Now()
	an := budget.ComputeAnalytics(b.Categories, b.Expenses, b.TotalBudget, now)
	remaining := an.TotalBudget - an.TotalSpent

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET  " + cli.FormatMonth(b.Year, b.Month)))
	fmt.Println()

	remainingStr := cli.FormatMoney(remaining)
	if remaining < 0 {
		remainingStr = cli.Bad(remainingStr)
	}
	projection := cli.FormatMoney(an.MonthlyProjection)
	if an.MonthlyProjection > an.TotalBudget {
		projection = cli.Warn(projection)
	}
	overspent := fmt.Sprintf("%d", an.CategoriesOverspent)
	if an.CategoriesOverspent > 0 {
		overspent = cli.Bad(overspent)
	}

	rows := [][]string{
		{"Budget", cli.FormatMoney(an.TotalBudget)},
		{"Spent", cli.FormatMoney(an.TotalSpent)},
		{"Remaining", remainingStr},
		{"Category limits", cli.FormatMoney(an.TotalLimit)},
		cli.SeparatorRow,
		{"Daily average (7d)", cli.FormatMoney(an.DailyAverage)},
		{"Weekly trend", cli.FormatTrend(an.WeeklyTrend)},
		{"Projection", projection},
		{"Overspent categories", overspent},
		{"Expenses", cli.FormatNumber(int64(len(b.Expenses)))},
		cli.SeparatorRow,
		{"Spent", cli.RenderSpendBar(an.TotalSpent, an.TotalBudget, 24)},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	spending := budget.ComputeAllSpending(b.Categories, b.Expenses, b.TotalBudget)
	var maxSpent float64
	labelWidth := 0
	for _, cs := range spending {
		maxSpent = max(maxSpent, cs.TotalSpent)
		labelWidth = max(labelWidth, len(cs.CategoryName))
	}
	if maxSpent > 0 {
		fmt.Println()
		for _, cs := range spending {
			label := fmt.Sprintf("%-*s %12s", labelWidth, cs.CategoryName, cli.FormatMoney(cs.TotalSpent))
			fmt.Println(cli.RenderHorizontalBar(label, cs.TotalSpent, maxSpent, 30))
		}
	}
	return nil
}
