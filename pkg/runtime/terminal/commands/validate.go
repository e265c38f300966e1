package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/services/aggregation"
	"github.com/de-tools/sales-atlas/pkg/services/submission"
	"github.com/spf13/cobra"
)

type ValidateCmd struct {
	file          string
	providersFile string
}

// NewValidateCmd checks a saved week the way a submit would, without saving
func NewValidateCmd() *cobra.Command {
	vc := &ValidateCmd{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a saved week for missing budgets",
		RunE:  vc.run,
	}

	cmd.Flags().StringVar(&vc.file, "file", "", "Path to the saved weekly data JSON")
	cmd.Flags().StringVar(&vc.providersFile, "providers", "", "Path to a providers ini file")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (vc *ValidateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	saved, err := loadWeek(ctx, vc.file, vc.providersFile, "")
	if err != nil {
		return err
	}

	totals := aggregation.ComputeWeeklyTotals(saved.days, saved.providers, saved.rate.Rate)
	if _, err := submission.Build(saved.week, saved.days, totals, saved.providers, saved.rate); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	offending := aggregation.OffendingBudgetDays(saved.days)
	if len(offending) == 0 {
		fmt.Fprintf(out, "week %s is ready to submit\n", saved.week.Key())
		return nil
	}

	fmt.Fprintf(out, "week %s has open days without budgeted sales:\n", saved.week.Key())
	for _, i := range offending {
		day := saved.days[i]
		fmt.Fprintf(out, "- %s %s\n", day.DayName, day.Date.Format("2006-01-02"))
	}
	return nil
}
