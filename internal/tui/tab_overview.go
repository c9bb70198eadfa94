package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
	"github.com/theirongolddev/mobius/internal/tui/components"
	"github.com/theirongolddev/mobius/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	an := a.analytics

	if a.loadErr != nil && a.budget.ID == "" {
		warn := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		return components.ContentCard("Error", warn.Render(a.loadErr.Error()), cw)
	}

	remaining := an.TotalBudget - an.TotalSpent
	remainingColor := t.Green
	if remaining < 0 {
		remainingColor = t.Red
	}
	spentDelta := ""
	if an.TotalBudget > 0 {
		spentDelta = cli.FormatPercent(an.TotalSpent/an.TotalBudget*100) + " of budget"
	}
	projColor := t.TextPrimary
	if an.MonthlyProjection > an.TotalBudget {
		projColor = t.Orange
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Budget", Value: cli.FormatMoney(an.TotalBudget)},
		{Label: "Spent", Value: cli.FormatMoney(an.TotalSpent), Delta: spentDelta},
		{Label: "Remaining", Value: cli.FormatMoney(remaining), Color: remainingColor},
		{Label: "Projection", Value: cli.FormatMoney(an.MonthlyProjection), Color: projColor},
	}, cw))
	b.WriteString("\n")

	trendColor := t.TextPrimary
	if an.WeeklyTrend > 0 {
		trendColor = t.Orange
	}
	overColor := t.Green
	if an.CategoriesOverspent > 0 {
		overColor = t.Red
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Daily average (7d)", Value: cli.FormatMoney(an.DailyAverage)},
		{Label: "Weekly trend", Value: cli.FormatTrend(an.WeeklyTrend), Color: trendColor},
		{Label: "Overspent categories", Value: fmt.Sprintf("%d", an.CategoriesOverspent), Color: overColor},
		{Label: "Expenses", Value: cli.FormatNumber(int64(len(a.budget.Expenses)))},
	}, cw))
	b.WriteString("\n")

	widths := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Categories", a.renderSpendBars(components.CardInnerWidth(widths[0])), widths[0]),
		components.ContentCard("Daily spending", a.renderDailyChart(components.CardInnerWidth(widths[1])), widths[1]),
	}))

	return b.String()
}

func (a App) renderSpendBars(innerW int) string {
	t := theme.Active
	if len(a.spending) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No categories")
	}

	labelW := 14
	barW := max(innerW-labelW-7, 5)
	lines := make([]string, 0, len(a.spending)*2)
	for i, cs := range a.spending {
		label := cs.CategoryName
		if icon := a.budget.Categories[i].Icon; icon != "" {
			label = icon + " " + label
		}
		lines = append(lines, components.SpendBar(label, cs.TotalSpent, cs.Limit, labelW, barW))

		detail := fmt.Sprintf("%s / %s", cli.FormatMoney(cs.TotalSpent), cli.FormatMoney(cs.Limit))
		style := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		if cs.IsOverspent {
			detail += "  over by " + cli.FormatMoney(cs.OverspentAmount)
			style = style.Foreground(t.Red)
		}
		lines = append(lines, style.Render(strings.Repeat(" ", labelW+1)+detail))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderDailyChart(innerW int) string {
	t := theme.Active
	if len(a.daily) == 0 {
		return ""
	}

	values := make([]float64, len(a.daily))
	labels := make([]string, len(a.daily))
	for i, d := range a.daily {
		values[i] = d.Amount
		labels[i] = d.Date.Format("2")
	}

	// Even daily share of the budget as the reference line
	dailyShare := 0.0
	if a.budget.TotalBudget > 0 {
		first := a.daily[0].Date
		dailyShare = a.budget.TotalBudget / float64(budget.DaysInMonth(first.Year(), first.Month()))
	}

	return components.BarChart(values, labels, t.Accent, dailyShare, innerW, 10)
}
