package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
	"github.com/theirongolddev/mobius/internal/log"
	"github.com/theirongolddev/mobius/internal/model"
)

var (
	flagExpenseDate     string
	flagEditAmount      string
	flagEditCategory    string
	flagEditDescription string
	flagEditDate        string
	flagListFrom        string
	flagListTo          string
	flagListCategory    string
)

var addCmd = &cobra.Command{
	Use:   "add <amount> <category> [description...]",
	Short: "Record an expense",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an expense (ID or unique prefix)",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete an expense (ID or unique prefix)",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

var expensesCmd = &cobra.Command{
	Use:     "expenses",
	Aliases: []string{"ls"},
	Short:   "List this month's expenses",
	RunE:    runExpenses,
}

func init() {
	addCmd.Flags().StringVarP(&flagExpenseDate, "date", "d", "", "Expense date YYYY-MM-DD (default today)")

	editCmd.Flags().StringVar(&flagEditAmount, "amount", "", "New amount")
	editCmd.Flags().StringVarP(&flagEditCategory, "category", "c", "", "New category")
	editCmd.Flags().StringVar(&flagEditDescription, "description", "", "New description")
	editCmd.Flags().StringVarP(&flagEditDate, "date", "d", "", "New date YYYY-MM-DD")

	expensesCmd.Flags().StringVar(&flagListFrom, "from", "", "First day YYYY-MM-DD (default start of month)")
	expensesCmd.Flags().StringVar(&flagListTo, "to", "", "Last day YYYY-MM-DD (default end of month)")
	expensesCmd.Flags().StringVarP(&flagListCategory, "category", "c", "", "Only this category")

	rootCmd.AddCommand(addCmd, editCmd, rmCmd, expensesCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	amount, err := budget.ParseAmount(args[0])
	if err != nil {
		return err
	}
	var date time.Time
	if flagExpenseDate != "" {
		if date, err = budget.ParseDate(flagExpenseDate); err != nil {
			return err
		}
	}

	ctx := commandContext(cmd)
	repo, b, err := loadBudget(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	_, cat, err := budget.FindCategory(b, args[1])
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, categoryNames(b))
	}

	next, e, err := budget.AddExpense(b, model.Expense{
		Amount:      amount,
		CategoryID:  cat.ID,
		Description: strings.Join(args[2:], " "),
		Date:        date,
	}, time.Now())
	if err != nil {
		return err
	}
	if err := saveBudget(ctx, repo, next); err != nil {
		return err
	}
	log.For(log.ComponentBudget).Debug("expense added",
		log.NewFields().WithOperation("add").WithExpense(e.ID, e.CategoryID, e.Amount).Args()...)

	cs := budget.ComputeCategorySpending(cat, next.Expenses, next.TotalBudget)
	fmt.Printf("  Added %s to %s  [%s]\n", cli.FormatMoney(e.Amount), cat.Name, cli.ShortID(e.ID))
	fmt.Printf("  %s  %s of %s\n", cli.RenderSpendBar(cs.TotalSpent, cs.Limit, 20),
		cli.FormatMoney(cs.TotalSpent), cli.FormatMoney(cs.Limit))
	if cs.IsOverspent {
		fmt.Println(cli.Bad(fmt.Sprintf("  %s is over its limit by %s", cat.Name, cli.FormatMoney(cs.OverspentAmount))))
	}
	return nil
}

func categoryNames(b model.BudgetData) string {
	names := make([]string, len(b.Categories))
	for i, c := range b.Categories {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	repo, b, err := loadBudget(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	e, err := budget.FindExpense(b, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("amount") {
		if e.Amount, err = budget.ParseAmount(flagEditAmount); err != nil {
			return err
		}
	}
	if flags.Changed("category") {
		_, cat, err := budget.FindCategory(b, flagEditCategory)
		if err != nil {
			return err
		}
		e.CategoryID = cat.ID
	}
	if flags.Changed("description") {
		e.Description = flagEditDescription
	}
	if flags.Changed("date") {
		if e.Date, err = budget.ParseDate(flagEditDate); err != nil {
			return err
		}
	}

	next, err := budget.UpdateExpense(b, e)
	if err != nil {
		return err
	}
	if err := saveBudget(ctx, repo, next); err != nil {
		return err
	}
	fmt.Printf("  Updated %s\n", cli.ShortID(e.ID))
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	repo, b, err := loadBudget(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	e, err := budget.FindExpense(b, args[0])
	if err != nil {
		return err
	}
	next, err := budget.RemoveExpense(b, e.ID)
	if err != nil {
		return err
	}
	if err := saveBudget(ctx, repo, next); err != nil {
		return err
	}
	fmt.Printf("  Removed %s (%s)\n", cli.FormatMoney(e.Amount), cli.ShortID(e.ID))
	return nil
}

func runExpenses(cmd *cobra.Command, _ []string) error {
	repo, b, err := loadBudget(commandContext(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	first, last := budget.MonthBounds(time.Now())
	since, until := first, last
	if flagListFrom != "" {
		if since, err = budget.ParseDate(flagListFrom); err != nil {
			return err
		}
	}
	if flagListTo != "" {
		if until, err = budget.ParseDate(flagListTo); err != nil {
			return err
		}
	}

	expenses := budget.ExpensesInRange(b.Expenses, since, until)
	if flagListCategory != "" {
		_, cat, err := budget.FindCategory(b, flagListCategory)
		if err != nil {
			return err
		}
		expenses = slices.DeleteFunc(expenses, func(e model.Expense) bool { return e.CategoryID != cat.ID })
	}

	if len(expenses) == 0 {
		fmt.Println("\n  No expenses in the selected range.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("EXPENSES  %s – %s", cli.FormatDate(since), cli.FormatDate(until))))
	fmt.Println()

	rows := make([][]string, 0, len(expenses)+2)
	for _, e := range expenses {
		catName := e.CategoryID
		if c, ok := b.Category(e.CategoryID); ok {
			catName = c.Name
		}
		rows = append(rows, []string{
			cli.ShortID(e.ID),
			cli.FormatDate(e.Date),
			catName,
			cli.FormatAmount(e.Amount),
			e.Description,
		})
	}
	rows = append(rows, cli.SeparatorRow,
		[]string{"", "", "Total", cli.FormatAmount(budget.TotalSpent(expenses)), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Date", "Category", "Amount", "Description"},
		Rows:    rows,
	}))
	return nil
}
