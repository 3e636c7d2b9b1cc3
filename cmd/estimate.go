package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trknhr/ghostguess/internal/estimate"
)

func newEstimateCmd(a *app) *cobra.Command {
	var (
		length   int
		alphabet int
		rate     float64
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate how many candidates a search of some length tests",
		Example: `
  # Use the alphabet of the configured model
  ghostguess estimate --length 10

  # Without a model
  ghostguess estimate --length 13 --alphabet 40 --rate 1e6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if alphabet == 0 {
				set, _, err := a.loadModel(cmd.Context())
				if err != nil {
					return err
				}
				letters, err := set.Alphabet()
				if err != nil {
					return err
				}
				alphabet = len(letters)
			}

			e, err := estimate.Compute(length, alphabet, a.cfg.Model.BranchBase, rate)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "possibilities tested: %.0f\n", e.Possibilities)
			fmt.Fprintf(out, "upper bound: %.0f\n", e.UpperBound)
			fmt.Fprintf(out, "minutes: %.0f\n", e.Minutes())
			return nil
		},
	}

	cmd.Flags().IntVarP(&length, "length", "l", 8, "password length in characters")
	cmd.Flags().IntVar(&alphabet, "alphabet", 0, "alphabet size (default: the model's)")
	cmd.Flags().Float64Var(&rate, "rate", estimate.DefaultRate, "candidates tested per second")
	return cmd
}
