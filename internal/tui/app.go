// Package tui provides the interactive Bubble Tea dashboard for mobius.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/config"
	"github.com/theirongolddev/mobius/internal/log"
	"github.com/theirongolddev/mobius/internal/model"
	"github.com/theirongolddev/mobius/internal/tui/components"
	"github.com/theirongolddev/mobius/internal/tui/theme"
)

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabCategories
	tabExpenses
	tabHistory
	tabSettings
)

// DataLoadedMsg is sent when the snapshot and history have been read,
// after the rollover check.
type DataLoadedMsg struct {
	Budget     model.BudgetData
	History    []model.MonthlyRecord
	RolledOver bool
	NoBudget   bool
	Err        error
}

// BudgetSavedMsg is sent after a snapshot write completes.
type BudgetSavedMsg struct {
	Budget model.BudgetData
	Notice string
	Err    error
}

// Options configures a new App.
type Options struct {
	Repo       budget.Repository
	Config     config.Config
	ConfigPath string
	Logger     *log.Logger
	Now        func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	repo       budget.Repository
	cfg        config.Config
	configPath string
	logger     *log.Logger
	now        func() time.Time

	// Data
	budget  model.BudgetData
	history []model.MonthlyRecord
	loaded  bool
	loadErr error

	// Derived from the data on every change
	spending  []model.CategorySpending
	analytics model.SpendingAnalytics
	daily     []budget.DailyTotal
	summary   model.HistoricalData
	expenses  []model.Expense // newest first

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	busy      bool
	notice    string

	// Per-tab state
	cats listState
	exps expensesState
	hist listState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	// Add-expense form
	expenseForm *huh.Form
	expenseVals *expenseValues

	spinner spinner.Model
}

type listState struct {
	cursor int
}

func (l *listState) move(delta, n int) {
	l.cursor = min(max(l.cursor+delta, 0), max(n-1, 0))
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	storeTimeout     = 10 * time.Second
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Logger == nil {
		opts.Logger = log.For(log.ComponentTUI)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.ConfigPath()
	}
	theme.SetActive(opts.Config.Appearance.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		repo:       opts.Repo,
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		now:        opts.Now,
		spinner:    sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.repo, a.logger, a.now()),
		a.spinner.Tick,
	)
}

func (a *App) recompute() {
	now := a.now()
	b := a.budget

	a.spending = budget.ComputeAllSpending(b.Categories, b.Expenses, b.TotalBudget)
	a.analytics = budget.ComputeAnalytics(b.Categories, b.Expenses, b.TotalBudget, now)
	since, until := budget.MonthBounds(now)
	if today := budget.Day(now); today.Before(until) {
		until = today
	}
	a.daily = budget.DailySeries(b.Expenses, since, until)
	a.summary = budget.Summarize(a.history, now)

	a.expenses = append([]model.Expense(nil), b.Expenses...)
	sortExpensesNewestFirst(a.expenses)

	a.cats.move(0, len(b.Categories))
	a.exps.move(0, len(a.expenses))
	a.hist.move(0, len(a.history))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.expenseForm != nil {
			a.expenseForm = a.expenseForm.WithWidth(min(msg.Width, 70))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil || a.expenseForm != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.expenseForm != nil {
			return a.updateExpenseForm(msg)
		}
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.busy = false
		a.loadErr = msg.Err
		if msg.NoBudget {
			a.needSetup = true
			a.setupVals = newSetupValues(a.cfg.Appearance.Theme)
			a.setupForm = newSetupForm(a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		if msg.Err != nil {
			a.notice = "load failed: " + msg.Err.Error()
			return a, nil
		}
		a.budget = msg.Budget
		a.history = msg.History
		a.notice = ""
		if msg.RolledOver {
			a.notice = "new month started, previous month archived"
		}
		a.recompute()
		return a, nil

	case BudgetSavedMsg:
		a.busy = false
		if msg.Err != nil {
			a.notice = "save failed: " + msg.Err.Error()
			a.busy = true
			return a, loadDataCmd(a.repo, a.logger, a.now())
		}
		a.budget = msg.Budget
		a.notice = msg.Notice
		a.needSetup = false
		a.recompute()
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.busy {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to an open form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.expenseForm != nil {
		return a.updateExpenseForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// Pending delete confirmation swallows everything else
	if a.exps.confirmDelete {
		return a.updateDeleteConfirm(key)
	}

	var (
		handled bool
		next    tea.Model
		cmd     tea.Cmd
	)
	switch a.activeTab {
	case tabCategories:
		next, cmd, handled = a.updateCategoriesKey(key)
	case tabExpenses:
		next, cmd, handled = a.updateExpensesKey(key)
	case tabHistory:
		next, cmd, handled = a.updateHistoryKey(key)
	case tabSettings:
		next, cmd, handled = a.updateSettingsKey(key)
	}
	if handled {
		return next, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.busy {
			return a, nil
		}
		a.busy = true
		return a, tea.Batch(loadDataCmd(a.repo, a.logger, a.now()), a.spinner.Tick)
	case "a":
		if a.budget.ID == "" {
			return a, nil
		}
		a.activeTab = tabExpenses
		return a.openExpenseForm()
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	delta := 0
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		delta = -1
	case tea.MouseButtonWheelDown:
		delta = 1
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil
	default:
		return a, nil
	}

	switch a.activeTab {
	case tabCategories:
		a.cats.move(delta, len(a.budget.Categories))
	case tabExpenses:
		a.exps.move(delta, len(a.expenses))
	case tabHistory:
		a.hist.move(delta, len(a.history))
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		vals := a.setupVals
		a.setupForm = nil
		a.setupVals = nil

		b, err := vals.build(a.now())
		if err != nil {
			a.notice = "setup failed: " + err.Error()
			return a, tea.Quit
		}
		if vals.Theme != "" && vals.Theme != a.cfg.Appearance.Theme {
			a.cfg.Appearance.Theme = vals.Theme
			theme.SetActive(vals.Theme)
			if err := config.SaveTo(a.configPath, a.cfg); err != nil {
				a.logger.Warn("saving config after setup failed", log.NewFields().WithError(err).Args()...)
			}
		}
		a.busy = true
		return a, saveBudgetCmd(a.repo, b, "budget created")

	case huh.StateAborted:
		return a, tea.Quit
	}

	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.needSetup {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	if a.expenseForm != nil {
		return a.viewExpenseForm()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  mobius needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ mobius"))
	b.WriteString(subtitleStyle.Render(" · monthly budget"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Loading budget..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o c e h x", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move selection"},
		}},
		{"Budget", [][2]string{
			{"a", "Add expense"},
			{"d", "Delete selected expense"},
			{"+ -", "Adjust category by 1%"},
			{"] [", "Adjust category by 5%"},
			{"t", "Cycle theme (Settings)"},
		}},
		{"General", [][2]string{
			{"r", "Reload data"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	period := ""
	if a.budget.Year > 0 {
		period = model.PeriodKey(a.budget.Year, a.budget.Month)
	}
	statusBar := components.RenderStatusBar(w, period, a.cfg.Storage.Backend, a.notice, a.busy)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabCategories:
		content = a.renderCategoriesTab(cw)
	case tabExpenses:
		content = a.renderExpensesTab(cw, contentH)
	case tabHistory:
		content = a.renderHistoryTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

// loadDataCmd runs the rollover check and reads the history.
func loadDataCmd(repo budget.Repository, logger *log.Logger, now time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		res, err := budget.NewRollover(repo, logger).Check(ctx, now)
		if errors.Is(err, budget.ErrNoBudget) {
			return DataLoadedMsg{NoBudget: true}
		}
		if err != nil {
			return DataLoadedMsg{Err: err}
		}
		history, err := repo.LoadHistory(ctx)
		if err != nil {
			return DataLoadedMsg{Budget: res.Budget, Err: fmt.Errorf("loading history: %w", err)}
		}
		return DataLoadedMsg{Budget: res.Budget, History: history, RolledOver: res.Reset}
	}
}

func saveBudgetCmd(repo budget.Repository, b model.BudgetData, notice string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := repo.Save(ctx, b); err != nil {
			return BudgetSavedMsg{Err: err}
		}
		return BudgetSavedMsg{Budget: b, Notice: notice}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
