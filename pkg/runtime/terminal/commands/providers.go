package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type ProvidersCmd struct {
	file string
}

func NewProvidersCmd() *cobra.Command {
	pc := &ProvidersCmd{}
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List the sales channels",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.file, "file", "", "Path to a providers ini file")

	return cmd
}

func (pc *ProvidersCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadProviders(cmd.Context(), pc.file)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, p := range cfg {
		fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
	}
	return w.Flush()
}
