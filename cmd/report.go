package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/trknhr/ghostguess/internal/pattern"
)

func newReportCmd(a *app) *cobra.Command {
	var distribution bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the pattern trees of the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, key, err := a.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			alphabet, err := set.Alphabet()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "model %s: %d orders, %d letters\n\n", key, set.Orders(), len(alphabet))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tSUFFIXES\tFOLLOWERS\tTOTAL\tCUTOFF")
			for _, s := range set.Stats() {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\n", s.Order, s.Suffixes, s.Followers, s.Total, s.Cutoff)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if distribution {
				fmt.Fprintln(out)
				return pattern.WriteDistribution(out, set, true)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&distribution, "distribution", false, "also print the count distribution of every order")
	return cmd
}
