package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/cli"
)

var flagRolloverDryRun bool

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Archive the previous month and reset expenses if a new month has started",
	RunE:  runRollover,
}

func init() {
	rolloverCmd.Flags().BoolVar(&flagRolloverDryRun, "dry-run", false, "Report what would be archived without writing")
	rootCmd.AddCommand(rolloverCmd)
}

func runRollover(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	repo, err := openRepo(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	now := time.Now()
	b, err := repo.Load(ctx)
	if errors.Is(err, budget.ErrNoBudget) {
		return errNoBudget
	}
	if err != nil {
		return err
	}

	if !budget.ShouldReset(b, now) {
		fmt.Printf("  %s is still current, nothing to do.\n", cli.FormatMonth(b.Year, b.Month))
		return nil
	}

	if flagRolloverDryRun {
		_, rec := budget.PerformReset(b, now)
		fmt.Println("  A reset is due. It would archive:")
		printRecord(rec)
		return nil
	}

	res, err := budget.NewRollover(repo, nil).Check(ctx, now)
	if err != nil {
		return err
	}
	if !res.Reset {
		fmt.Println("  Nothing to do.")
		return nil
	}
	if res.ArchiveErr != nil {
		fmt.Println(cli.Warn(fmt.Sprintf("  Expenses were reset but the month could not be archived: %v", res.ArchiveErr)))
	} else {
		fmt.Printf("  Archived %s: spent %s, balance %s\n",
			cli.FormatMonth(res.Record.Year, res.Record.Month),
			cli.FormatMoney(res.Record.TotalSpent), cli.FormatMoney(res.Record.TotalRemaining))
	}
	fmt.Printf("  Started %s with %s\n", cli.FormatMonth(res.Budget.Year, res.Budget.Month), cli.FormatMoney(res.Budget.TotalBudget))
	return nil
}
