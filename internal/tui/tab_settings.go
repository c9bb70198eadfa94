package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mobius/internal/cli"
	"github.com/theirongolddev/mobius/internal/config"
	"github.com/theirongolddev/mobius/internal/tui/components"
	"github.com/theirongolddev/mobius/internal/tui/theme"
)

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	if key != "t" && key != "enter" {
		return a, nil, false
	}

	next := theme.Next(a.cfg.Appearance.Theme)
	a.cfg.Appearance.Theme = next.Name
	theme.SetActive(next.Name)
	a.spinner.Style = a.spinner.Style.Foreground(next.Accent).Background(next.Surface)

	if err := config.SaveTo(a.configPath, a.cfg); err != nil {
		a.notice = "saving config failed: " + err.Error()
	} else {
		a.notice = "theme: " + next.Name
	}
	return a, nil, true
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	row := func(b *strings.Builder, label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", label+":")))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	var appearance strings.Builder
	appearance.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", "Theme:")))
	for i, name := range theme.Names() {
		if i > 0 {
			appearance.WriteString(dimStyle.Render("  "))
		}
		if name == t.Name {
			appearance.WriteString(accentStyle.Render("● " + name))
		} else {
			appearance.WriteString(dimStyle.Render("○ " + name))
		}
	}
	appearance.WriteString("\n")
	row(&appearance, "Currency", cfg.General.Currency)
	appearance.WriteString(dimStyle.Render("[t] cycle theme (saved to config)"))

	storage := cfg.Storage.Backend
	switch storage {
	case "", "sqlite":
		storage = "sqlite · " + cfg.SQLitePath()
	case "mongo":
		storage = "mongo · " + cfg.Storage.Mongo.Database
	case "redis":
		storage = "redis · " + cfg.Storage.Redis.Addr
	}

	var general strings.Builder
	row(&general, "Storage", storage)
	row(&general, "Rollover schedule", cfg.Rollover.Schedule)
	row(&general, "Daemon address", cfg.Daemon.Addr)
	row(&general, "Budget created", cli.FormatDate(a.budget.CreatedAt))
	lastReset := "never"
	if a.budget.LastResetDate != nil {
		lastReset = cli.FormatDate(*a.budget.LastResetDate)
	}
	row(&general, "Last reset", lastReset)
	row(&general, "Archived months", cli.FormatNumber(int64(len(a.history))))
	general.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", "Config file:")))
	general.WriteString(valueStyle.Render(a.configPath))

	var b strings.Builder
	b.WriteString(components.ContentCard("Appearance", appearance.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", general.String(), cw))
	return b.String()
}
