package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/services/report"
	"github.com/spf13/cobra"
)

type TotalsCmd struct {
	file          string
	providersFile string
	rate          string
	format        string
	reporters     map[string]ReportHandler
}

// NewTotalsCmd prints the weekly totals of a saved week. reporters are keyed
// by the --format value.
func NewTotalsCmd(reporters map[string]ReportHandler) *cobra.Command {
	tc := &TotalsCmd{reporters: reporters}
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Compute weekly totals for a saved week",
		RunE:  tc.run,
	}

	cmd.Flags().StringVar(&tc.file, "file", "", "Path to the saved weekly data JSON")
	cmd.Flags().StringVar(&tc.providersFile, "providers", "", "Path to a providers ini file")
	cmd.Flags().StringVar(&tc.rate, "rate", "", "Average hourly rate overriding the saved one")
	cmd.Flags().StringVar(&tc.format, "format", "table", "Output format (table or plain)")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (tc *TotalsCmd) run(cmd *cobra.Command, _ []string) error {
	reporter, ok := tc.reporters[tc.format]
	if !ok {
		return fmt.Errorf("unsupported format %q", tc.format)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	saved, err := loadWeek(ctx, tc.file, tc.providersFile, tc.rate)
	if err != nil {
		return err
	}

	return reporter.Handle(report.Weekly(saved.week, saved.days, saved.providers, saved.rate))
}
