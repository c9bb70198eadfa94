package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
	"github.com/theirongolddev/mobius/internal/model"
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cat"},
	Short:   "Per-category spending for the current month",
	RunE:    runCategories,
}

var categoriesSetCmd = &cobra.Command{
	Use:   "set <category> <percentage>",
	Short: "Change a category's share and rebalance the others",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategoriesSet,
}

var categoriesLimitCmd = &cobra.Command{
	Use:   "limit <category> <amount|none>",
	Short: "Set an explicit spending limit, or clear it with none",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategoriesLimit,
}

func init() {
	categoriesCmd.AddCommand(categoriesSetCmd)
	categoriesCmd.AddCommand(categoriesLimitCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	repo, b, err := loadBudget(commandContext(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	printCategories(b)
	return nil
}

func printCategories(b model.BudgetData) {
	spending := budget.ComputeAllSpending(b.Categories, b.Expenses, b.TotalBudget)

	fmt.Println()
	fmt.Println(cli.RenderTitle("CATEGORIES  " + cli.FormatMonth(b.Year, b.Month)))
	fmt.Println()

	rows := make([][]string, 0, len(spending))
	for i, cs := range spending {
		cat := b.Categories[i]
		name := cat.Name
		if cat.Icon != "" {
			name = cat.Icon + " " + name
		}
		limit := cli.FormatAmount(cs.Limit)
		if cat.Limit != nil {
			limit += "*"
		}
		remaining := cli.FormatAmount(cs.Remaining)
		if cs.IsOverspent {
			remaining = cli.Bad("-" + cli.FormatAmount(cs.OverspentAmount))
		}
		rows = append(rows, []string{
			name,
			cli.FormatPercent(cat.Percentage),
			limit,
			cli.FormatAmount(cs.TotalSpent),
			remaining,
			cli.RenderSpendBar(cs.TotalSpent, cs.Limit, 16),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Share", "Limit", "Spent", "Remaining", ""},
		Rows:    rows,
	}))

	if !budget.IsAllocationValid(b.Categories) {
		fmt.Println(cli.Warn(fmt.Sprintf("\n  Allocation totals %.0f%%, expected 100%%.", budget.TotalPercentage(b.Categories))))
	}
	if hasExplicitLimit(b.Categories) {
		fmt.Println(cli.Muted("  * explicit limit"))
	}
}

func hasExplicitLimit(cats []model.Category) bool {
	for _, c := range cats {
		if c.Limit != nil {
			return true
		}
	}
	return false
}

func runCategoriesSet(cmd *cobra.Command, args []string) error {
	pct, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(args[1]), "%"), 64)
	if err != nil {
		return fmt.Errorf("%w: %q", budget.ErrInvalidPercentage, args[1])
	}

	ctx := commandContext(cmd)
	repo, b, err := loadBudget(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	next, err := budget.SetCategoryPercentage(b, args[0], pct)
	if err != nil {
		return err
	}
	if err := saveBudget(ctx, repo, next); err != nil {
		return err
	}

	printCategories(next)
	return nil
}

func runCategoriesLimit(cmd *cobra.Command, args []string) error {
	var limit *float64
	if raw := strings.TrimSpace(args[1]); !strings.EqualFold(raw, "none") {
		v, err := budget.ParseAmount(raw)
		if err != nil {
			return err
		}
		limit = &v
	}

	ctx := commandContext(cmd)
	repo, b, err := loadBudget(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	next, err := budget.SetCategoryLimit(b, args[0], limit)
	if err != nil {
		return err
	}
	if err := saveBudget(ctx, repo, next); err != nil {
		return err
	}

	printCategories(next)
	return nil
}
