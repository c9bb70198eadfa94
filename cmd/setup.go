package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
	"github.com/theirongolddev/mobius/internal/config"
	"github.com/theirongolddev/mobius/internal/model"
	"github.com/theirongolddev/mobius/internal/tui/theme"
)

var (
	flagSetupAmount string
	flagSetupPreset string
	flagSetupYes    bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Long: "Choose a monthly budget and how it is split into categories.\n" +
		"With --amount the wizard is skipped and the chosen preset is used as is.",
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&flagSetupAmount, "amount", "", "Monthly budget, skips the wizard")
	setupCmd.Flags().StringVar(&flagSetupPreset, "preset", "simple", "Category preset for --amount: simple or extended")
	setupCmd.Flags().BoolVarP(&flagSetupYes, "yes", "y", false, "Replace an existing budget without asking")
	rootCmd.AddCommand(setupCmd)
}

const (
	actionDone   = "done"
	actionAdjust = "adjust"
)

func runSetup(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	repo, err := openRepo(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	existing, err := repo.Load(ctx)
	switch {
	case errors.Is(err, budget.ErrNoBudget):
	case err != nil:
		return err
	case !flagSetupYes:
		if flagSetupAmount != "" {
			return errors.New("a budget already exists, pass --yes to replace it")
		}
		replace := false
		if err := huh.NewConfirm().
			Title(fmt.Sprintf("A budget of %s already exists. Replace it?", cli.FormatMoney(existing.TotalBudget))).
			Description("This month's expenses will be discarded. Archived months are kept.").
			Value(&replace).
			Run(); err != nil {
			return err
		}
		if !replace {
			return nil
		}
	}

	cfg := appCfg
	var (
		amount float64
		cats   []model.Category
	)
	if flagSetupAmount != "" {
		if amount, err = budget.ParseAmount(flagSetupAmount); err != nil {
			return err
		}
		presets, err := presetByName(flagSetupPreset)
		if err != nil {
			return err
		}
		cats = budget.CategoriesFromPresets(presets)
	} else {
		if amount, cats, err = setupWizard(&cfg); err != nil {
			return err
		}
	}

	b, err := budget.NewBudget(amount, cats, time.Now())
	if err != nil {
		return err
	}
	if err := saveBudget(ctx, repo, b); err != nil {
		return err
	}
	if err := config.SaveTo(configPath(), cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	printCategories(b)
	fmt.Printf("\n  Saved config to %s\n", configPath())
	fmt.Println("  Add expenses with `mobius add <amount> <category>`.")
	return nil
}

func presetByName(name string) ([]model.CategoryPreset, error) {
	switch name {
	case "", "simple":
		return model.DefaultCategories, nil
	case "extended":
		return model.ExtendedCategories, nil
	}
	return nil, fmt.Errorf("unknown preset %q, expected simple or extended", name)
}

// setupWizard asks for the budget, the category split and the theme. The
// adjustment loop only ends once the shares add up to 100%.
func setupWizard(cfg *config.Config) (float64, []model.Category, error) {
	choice := strconv.FormatFloat(model.BudgetSuggestions[1], 'f', -1, 64)
	opts := make([]huh.Option[string], 0, len(model.BudgetSuggestions)+1)
	for _, s := range model.BudgetSuggestions {
		opts = append(opts, huh.NewOption(cli.FormatMoney(s), strconv.FormatFloat(s, 'f', -1, 64)))
	}
	opts = append(opts, huh.NewOption("Custom amount", "custom"))

	var custom string
	preset := "simple"
	themeName := theme.ByName(cfg.Appearance.Theme).Name
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Monthly budget").Options(opts...).Value(&choice),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly budget").
				Placeholder("2000").
				Validate(func(s string) error {
					v, err := budget.ParseAmount(s)
					if err != nil {
						return err
					}
					return budget.ValidateBudgetAmount(v)
				}).
				Value(&custom),
		).WithHideFunc(func() bool { return choice != "custom" }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Categories").
				Options(
					huh.NewOption("Simple (3 categories)", "simple"),
					huh.NewOption("Extended (6 categories)", "extended"),
				).
				Value(&preset),
			huh.NewSelect[string]().Title("Color theme").Options(themeOpts...).Value(&themeName),
		),
	)
	if err := form.Run(); err != nil {
		return 0, nil, err
	}

	raw := choice
	if choice == "custom" {
		raw = custom
	}
	amount, err := budget.ParseAmount(raw)
	if err != nil {
		return 0, nil, err
	}
	if err := budget.ValidateBudgetAmount(amount); err != nil {
		return 0, nil, err
	}
	cfg.Appearance.Theme = themeName

	presets, err := presetByName(preset)
	if err != nil {
		return 0, nil, err
	}
	cats := budget.CategoriesFromPresets(presets)

	for {
		fmt.Println()
		fmt.Print(allocationTable(cats, amount))

		action := actionDone
		if err := huh.NewSelect[string]().
			Title(fmt.Sprintf("Allocated %.0f%%", budget.TotalPercentage(cats))).
			Options(
				huh.NewOption("Looks good", actionDone),
				huh.NewOption("Adjust a category", actionAdjust),
			).
			Validate(func(a string) error {
				if a == actionDone && !budget.IsAllocationValid(cats) {
					return fmt.Errorf("shares add up to %.0f%%, adjust until they reach 100%%", budget.TotalPercentage(cats))
				}
				return nil
			}).
			Value(&action).
			Run(); err != nil {
			return 0, nil, err
		}
		if action == actionDone {
			return amount, cats, nil
		}

		idx, pct, err := askAdjustment(cats)
		if err != nil {
			return 0, nil, err
		}
		cats = budget.Rebalance(cats, idx, pct)
	}
}

func askAdjustment(cats []model.Category) (int, float64, error) {
	idx := 0
	opts := make([]huh.Option[int], len(cats))
	for i, c := range cats {
		opts[i] = huh.NewOption(fmt.Sprintf("%s (%.0f%%)", c.Name, c.Percentage), i)
	}
	var raw string
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().Title("Category").Options(opts...).Value(&idx),
		huh.NewInput().
			Title("New share (%)").
			Validate(func(s string) error {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return err
				}
				return budget.ValidatePercentage(v)
			}).
			Value(&raw),
	)).Run()
	if err != nil {
		return 0, 0, err
	}
	pct, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, 0, err
	}
	return idx, budget.ClampPercentage(pct), nil
}

func allocationTable(cats []model.Category, total float64) string {
	rows := make([][]string, 0, len(cats)+2)
	for _, c := range cats {
		rows = append(rows, []string{
			c.Name,
			cli.FormatPercent(c.Percentage),
			cli.FormatMoney(total * c.Percentage / 100),
		})
	}
	rows = append(rows, cli.SeparatorRow, []string{
		"Total",
		cli.FormatPercent(budget.TotalPercentage(cats)),
		cli.FormatMoney(total * budget.TotalPercentage(cats) / 100),
	})
	return cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Share", "Amount"},
		Rows:    rows,
	})
}
