package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
	"github.com/theirongolddev/mobius/internal/model"
	"github.com/theirongolddev/mobius/internal/tui/components"
	"github.com/theirongolddev/mobius/internal/tui/theme"
)

// expensesState tracks the expenses tab state.
type expensesState struct {
	listState
	confirmDelete bool
}

// expenseValues holds the add-expense form answers.
type expenseValues struct {
	Amount      string
	CategoryID  string
	Description string
	Date        string
}

func sortExpensesNewestFirst(expenses []model.Expense) {
	slices.SortStableFunc(expenses, func(x, y model.Expense) int {
		if c := y.Date.Compare(x.Date); c != 0 {
			return c
		}
		return cmp.Compare(y.CreatedAt.UnixNano(), x.CreatedAt.UnixNano())
	})
}

func validateExpenseAmount(s string) error {
	_, err := budget.ParseAmount(s)
	return err
}

func validateOptionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := budget.ParseDate(s)
	return err
}

func newExpenseForm(b model.BudgetData, vals *expenseValues) *huh.Form {
	opts := make([]huh.Option[string], 0, len(b.Categories))
	for _, c := range b.Categories {
		label := c.Name
		if c.Icon != "" {
			label = c.Icon + " " + c.Name
		}
		opts = append(opts, huh.NewOption(label, c.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount").
				Placeholder("12,50").
				Validate(validateExpenseAmount).
				Value(&vals.Amount),
			huh.NewSelect[string]().
				Title("Category").
				Options(opts...).
				Value(&vals.CategoryID),
			huh.NewInput().
				Title("Description").
				CharLimit(120).
				Value(&vals.Description),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD, empty for today").
				Validate(validateOptionalDate).
				Value(&vals.Date),
		),
	).WithShowHelp(true)
}

func (a App) openExpenseForm() (tea.Model, tea.Cmd) {
	if len(a.budget.Categories) == 0 {
		return a, nil
	}
	a.expenseVals = &expenseValues{CategoryID: a.budget.Categories[0].ID}
	a.expenseForm = newExpenseForm(a.budget, a.expenseVals)
	if a.width > 0 {
		a.expenseForm = a.expenseForm.WithWidth(min(a.width, 70))
	}
	return a, a.expenseForm.Init()
}

func (a App) updateExpenseForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.expenseForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.expenseForm = f
	}

	switch a.expenseForm.State {
	case huh.StateCompleted:
		vals := a.expenseVals
		a.expenseForm = nil
		a.expenseVals = nil
		return a.submitExpense(vals)
	case huh.StateAborted:
		a.expenseForm = nil
		a.expenseVals = nil
		return a, nil
	}
	return a, cmd
}

func (a App) submitExpense(vals *expenseValues) (tea.Model, tea.Cmd) {
	now := a.now()
	amount, err := budget.ParseAmount(vals.Amount)
	if err != nil {
		a.notice = err.Error()
		return a, nil
	}
	next, e, err := budget.AddExpense(a.budget, model.Expense{
		Amount:      amount,
		CategoryID:  vals.CategoryID,
		Description: strings.TrimSpace(vals.Description),
		Date:        budget.ParseDateOr(vals.Date, now),
	}, now)
	if err != nil {
		a.notice = err.Error()
		return a, nil
	}

	a.budget = next
	a.recompute()
	a.busy = true
	return a, saveBudgetCmd(a.repo, next, "added "+cli.FormatMoney(e.Amount))
}

func (a App) updateExpensesKey(key string) (tea.Model, tea.Cmd, bool) {
	n := len(a.expenses)
	switch key {
	case "j", "down":
		a.exps.move(1, n)
	case "k", "up":
		a.exps.move(-1, n)
	case "g":
		a.exps.cursor = 0
	case "G":
		a.exps.move(n, n)
	case "d", "delete":
		if n > 0 && !a.busy {
			e := a.expenses[a.exps.cursor]
			a.exps.confirmDelete = true
			a.notice = fmt.Sprintf("delete %s %s? [y/n]", cli.FormatMoney(e.Amount), e.Description)
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	a.exps.confirmDelete = false
	if key != "y" || a.exps.cursor >= len(a.expenses) {
		a.notice = ""
		return a, nil
	}

	e := a.expenses[a.exps.cursor]
	next, err := budget.RemoveExpense(a.budget, e.ID)
	if err != nil {
		a.notice = err.Error()
		return a, nil
	}
	a.budget = next
	a.recompute()
	a.busy = true
	return a, saveBudgetCmd(a.repo, next, "removed "+cli.FormatMoney(e.Amount))
}

func (a App) renderExpensesTab(cw, h int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	descW := max(innerW-52, 10)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("  %-10s  %-16s  %12s  %-*s  %-8s",
		"Date", "Category", "Amount", descW, "Description", "ID")))
	body.WriteString("\n")

	if len(a.expenses) == 0 {
		body.WriteString(dimStyle.Render("  No expenses this month. Press [a] to add one."))
		body.WriteString("\n")
	}

	// card border + header + footer
	visible := max(h-6, 1)
	start := max(a.exps.cursor-visible+1, 0)
	end := min(start+visible, len(a.expenses))

	for i := start; i < end; i++ {
		e := a.expenses[i]
		catName := e.CategoryID
		if c, ok := a.budget.Category(e.CategoryID); ok {
			catName = c.Name
		}
		line := fmt.Sprintf("%-10s  %-16s  %12s  %-*s  %-8s",
			cli.FormatDate(e.Date), truncStr(catName, 16), cli.FormatAmount(e.Amount),
			descW, truncStr(e.Description, descW), cli.ShortID(e.ID))
		if i == a.exps.cursor {
			body.WriteString(selectedStyle.Foreground(t.AccentBright).Render("▸ "))
			body.WriteString(selectedStyle.Render(line))
		} else {
			body.WriteString(rowStyle.Render("  " + line))
		}
		body.WriteString("\n")
	}

	body.WriteString(dimStyle.Render(fmt.Sprintf("%d of %d  [a] add  [d] delete  [j/k] move",
		min(a.exps.cursor+1, len(a.expenses)), len(a.expenses))))

	title := fmt.Sprintf("Expenses · %s", cli.FormatMoney(budget.TotalSpent(a.budget.Expenses)))
	return components.ContentCard(title, body.String(), cw)
}

func (a App) viewExpenseForm() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.expenseForm.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}
