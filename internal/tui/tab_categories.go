package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
	"github.com/theirongolddev/mobius/internal/tui/components"
	"github.com/theirongolddev/mobius/internal/tui/theme"
)

func (a App) updateCategoriesKey(key string) (tea.Model, tea.Cmd, bool) {
	n := len(a.budget.Categories)
	step := 0.0
	switch key {
	case "j", "down":
		a.cats.move(1, n)
		return a, nil, true
	case "k", "up":
		a.cats.move(-1, n)
		return a, nil, true
	case "+", "=":
		step = 1
	case "-":
		step = -1
	case "]":
		step = 5
	case "[":
		step = -5
	default:
		return a, nil, false
	}

	if n == 0 || a.busy {
		return a, nil, true
	}
	cat := a.budget.Categories[a.cats.cursor]
	next, err := budget.SetCategoryPercentage(a.budget, cat.ID, cat.Percentage+step)
	if err != nil {
		a.notice = err.Error()
		return a, nil, true
	}

	notice := fmt.Sprintf("%s set to %.0f%%", cat.Name, next.Categories[a.cats.cursor].Percentage)
	if !budget.IsAllocationValid(next.Categories) {
		notice += fmt.Sprintf(", allocation totals %.0f%%", budget.TotalPercentage(next.Categories))
	}
	a.budget = next
	a.recompute()
	a.busy = true
	return a, saveBudgetCmd(a.repo, next, notice), true
}

func (a App) renderCategoriesTab(cw int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	nameW := max(innerW-64, 14)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("  %-*s %6s %12s %12s %12s %12s",
		nameW, "Category", "Share", "Limit", "Spent", "Remaining", "Over")))
	body.WriteString("\n")

	for i, cs := range a.spending {
		cat := a.budget.Categories[i]
		name := cat.Name
		if cat.Icon != "" {
			name = cat.Icon + " " + name
		}
		if cat.Limit != nil {
			name += " *"
		}
		over := "-"
		if cs.IsOverspent {
			over = cli.FormatAmount(cs.OverspentAmount)
		}
		line := fmt.Sprintf("%-*s %5.0f%% %12s %12s %12s %12s",
			nameW, truncStr(name, nameW), cat.Percentage,
			cli.FormatAmount(cs.Limit), cli.FormatAmount(cs.TotalSpent),
			cli.FormatAmount(cs.Remaining), over)

		style := rowStyle
		if cs.IsOverspent {
			style = style.Foreground(t.Red)
		}
		if i == a.cats.cursor {
			body.WriteString(selectedStyle.Foreground(t.AccentBright).Render("▸ "))
			body.WriteString(selectedStyle.Render(line))
		} else {
			body.WriteString(style.Render("  " + line))
		}
		body.WriteString("\n")
	}

	total := budget.TotalPercentage(a.budget.Categories)
	totalStyle := dimStyle
	if !budget.IsAllocationValid(a.budget.Categories) {
		totalStyle = totalStyle.Foreground(t.Orange)
	}
	body.WriteString("\n")
	body.WriteString(totalStyle.Render(fmt.Sprintf("Allocated %.0f%% of %s", total, cli.FormatMoney(a.budget.TotalBudget))))
	if missing := budget.MissingPercentage(a.budget.Categories); missing > 0 {
		body.WriteString(totalStyle.Render(fmt.Sprintf(" (%.0f%% unassigned)", missing)))
	}
	body.WriteString("\n")
	body.WriteString(dimStyle.Render("[j/k] select  +/- adjust 1%  ]/[ adjust 5%  * explicit limit"))

	var b strings.Builder
	b.WriteString(components.ContentCard("Categories", body.String(), cw))

	if len(a.spending) > 0 {
		cs := a.spending[a.cats.cursor]
		var detail strings.Builder
		detail.WriteString(components.SpendBar(cs.CategoryName, cs.TotalSpent, cs.Limit, 16, max(innerW-24, 10)))
		detail.WriteString("\n")
		detail.WriteString(dimStyle.Render(fmt.Sprintf("Allocated %s · %d expenses this month",
			cli.FormatMoney(cs.BudgetAllocated), len(cs.Expenses))))
		b.WriteString("\n")
		b.WriteString(components.ContentCard(cs.CategoryName, detail.String(), cw))
	}

	return b.String()
}
