package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mobius/internal/cli"
	"github.com/theirongolddev/mobius/internal/model"
	"github.com/theirongolddev/mobius/internal/tui/components"
	"github.com/theirongolddev/mobius/internal/tui/theme"
)

func (a App) updateHistoryKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.hist.move(1, len(a.history))
	case "k", "up":
		a.hist.move(-1, len(a.history))
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderHistoryTab(cw int) string {
	t := theme.Active
	s := a.summary

	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(a.history) == 0 {
		return components.ContentCard("History",
			dimStyle.Render("No archived months yet. Months are archived when a new month starts."), cw)
	}

	best, worst := "-", "-"
	if s.BestSavingMonth != nil {
		best = cli.FormatMonth(s.BestSavingMonth.Year, s.BestSavingMonth.Month)
	}
	if s.WorstOverspentMonth != nil {
		worst = cli.FormatMonth(s.WorstOverspentMonth.Year, s.WorstOverspentMonth.Month)
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Saved all time", Value: cli.FormatMoney(s.TotalSavedAllTime), Color: t.Green},
		{Label: "Overspent all time", Value: cli.FormatMoney(s.TotalOverspentAllTime), Color: t.Red},
		{Label: "Average balance", Value: cli.FormatMoney(s.AverageMonthlyBalance)},
		{Label: "Best / worst", Value: best, Delta: worst},
	}, cw))
	b.WriteString("\n")

	widths := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Months", a.renderHistoryList(components.CardInnerWidth(widths[0])), widths[0]),
		components.ContentCard("Balances", a.renderRecordDetail(components.CardInnerWidth(widths[1])), widths[1]),
	}))
	return b.String()
}

// renderHistoryList lists months newest first; the cursor indexes that order.
func (a App) renderHistoryList(innerW int) string {
	t := theme.Active
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright).Bold(true)

	monthW := max(innerW-30, 12)
	var lines []string
	for i := range a.history {
		rec := a.history[len(a.history)-1-i]
		style := rowStyle
		if rec.TotalRemaining < 0 {
			style = style.Foreground(t.Red)
		}
		line := fmt.Sprintf("%-*s %12s %12s", monthW, cli.FormatMonth(rec.Year, rec.Month),
			cli.FormatAmount(rec.TotalSpent), cli.FormatAmount(rec.TotalRemaining))
		if i == a.hist.cursor {
			lines = append(lines, selectedStyle.Render("▸ "+line))
			continue
		}
		lines = append(lines, style.Render("  "+line))
	}

	var spark []float64
	for _, rec := range a.history {
		spark = append(spark, rec.TotalSpent)
	}
	lines = append(lines, "", components.Sparkline(spark, t.Accent))
	return strings.Join(lines, "\n")
}

func (a App) selectedRecord() (model.MonthlyRecord, bool) {
	if len(a.history) == 0 {
		return model.MonthlyRecord{}, false
	}
	return a.history[len(a.history)-1-a.hist.cursor], true
}

func (a App) renderRecordDetail(innerW int) string {
	t := theme.Active
	rec, ok := a.selectedRecord()
	if !ok {
		return ""
	}
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(labelStyle.Render(cli.FormatMonth(rec.Year, rec.Month) + "  "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s spent of %s, %d expenses",
		cli.FormatMoney(rec.TotalSpent), cli.FormatMoney(rec.TotalBudget), rec.ExpenseCount)))
	b.WriteString("\n\n")

	labelW := 14
	barW := max(innerW-labelW-7, 5)
	for _, cb := range rec.CategoryBalances {
		b.WriteString(components.SpendBar(cb.CategoryName, cb.TotalSpent, cb.BudgetAllocated, labelW, barW))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
