package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
	"github.com/theirongolddev/mobius/internal/model"
	"github.com/theirongolddev/mobius/internal/tui/theme"
)

const (
	presetSimple   = "simple"
	presetExtended = "extended"
	customAmount   = "custom"
)

// setupValues holds the onboarding form answers.
type setupValues struct {
	Suggestion string
	Custom     string
	Preset     string
	Theme      string
}

func newSetupValues(currentTheme string) *setupValues {
	return &setupValues{
		Suggestion: amountKey(model.BudgetSuggestions[1]),
		Preset:     presetSimple,
		Theme:      theme.ByName(currentTheme).Name,
	}
}

func amountKey(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// presetCategories returns the category templates for a preset choice.
func presetCategories(preset string) []model.CategoryPreset {
	if preset == presetExtended {
		return model.ExtendedCategories
	}
	return model.DefaultCategories
}

func describePreset(presets []model.CategoryPreset) string {
	parts := make([]string, len(presets))
	for i, p := range presets {
		parts[i] = fmt.Sprintf("%s %.0f%%", p.Name, p.Percentage)
	}
	return strings.Join(parts, " · ")
}

// amount resolves the chosen monthly total.
func (v *setupValues) amount() (float64, error) {
	raw := v.Suggestion
	if raw == customAmount {
		raw = v.Custom
	}
	amount, err := budget.ParseAmount(raw)
	if err != nil {
		return 0, err
	}
	return amount, budget.ValidateBudgetAmount(amount)
}

// build turns the answers into the first snapshot.
func (v *setupValues) build(now time.Time) (model.BudgetData, error) {
	amount, err := v.amount()
	if err != nil {
		return model.BudgetData{}, err
	}
	cats := budget.CategoriesFromPresets(presetCategories(v.Preset))
	return budget.NewBudget(amount, cats, now)
}

func validateBudgetInput(s string) error {
	amount, err := budget.ParseAmount(s)
	if err != nil {
		return err
	}
	return budget.ValidateBudgetAmount(amount)
}

// newSetupForm builds the first-run onboarding form.
func newSetupForm(vals *setupValues) *huh.Form {
	amountOpts := make([]huh.Option[string], 0, len(model.BudgetSuggestions)+1)
	for _, s := range model.BudgetSuggestions {
		amountOpts = append(amountOpts, huh.NewOption(cli.FormatMoney(s), amountKey(s)))
	}
	amountOpts = append(amountOpts, huh.NewOption("Custom amount", customAmount))

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to mobius").
				Description("Set a monthly budget and split it into categories.\nExpenses reset automatically at the start of each month."),
			huh.NewSelect[string]().
				Title("Monthly budget").
				Options(amountOpts...).
				Value(&vals.Suggestion),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly budget").
				Description("Up to 1.000.000").
				Placeholder("2000").
				Validate(validateBudgetInput).
				Value(&vals.Custom),
		).WithHideFunc(func() bool { return vals.Suggestion != customAmount }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Categories").
				Options(
					huh.NewOption("Simple: "+describePreset(model.DefaultCategories), presetSimple),
					huh.NewOption("Extended: "+describePreset(model.ExtendedCategories), presetExtended),
				).
				Value(&vals.Preset),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithShowHelp(false)
}
