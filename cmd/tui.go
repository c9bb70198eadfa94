package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/mobius/internal/log"
	"github.com/theirongolddev/mobius/internal/tui"
	"github.com/theirongolddev/mobius/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Background styling needs ANSI codes even when lipgloss detects Ascii.
	lipgloss.SetColorProfile(termenv.TrueColor)

	repo, err := openRepo(commandContext(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	app := tui.NewApp(tui.Options{
		Repo:       repo,
		Config:     appCfg,
		ConfigPath: configPath(),
		Logger:     log.For(log.ComponentTUI),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
