package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trknhr/ghostguess/internal/pattern"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		encodingPath     string
		distributionPath string
		withCutoff       bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the pattern trees and write them out",
		Example: `
  # Learn from a corpus and save the encoding for later runs
  ghostguess build --source corpus -m rockyou.txt --write-encoding pattern_tree_encoding.txt

  # Write the count distribution of every order with its cutoff
  ghostguess build --write-distribution probabilities.txt --cutoff`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, key, err := a.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "INFO: Built pattern trees %s\n", key)

			if distributionPath != "" {
				if err := pattern.WriteDistributionFile(distributionPath, set, withCutoff); err != nil {
					return err
				}
				fmt.Fprintf(out, "INFO: Wrote probabilities to %s\n", distributionPath)
			}
			if encodingPath != "" {
				if err := pattern.EncodeFile(encodingPath, set); err != nil {
					return err
				}
				fmt.Fprintf(out, "INFO: Wrote encoding to %s\n", encodingPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&encodingPath, "write-encoding", "", "write the model encoding to this path")
	cmd.Flags().StringVar(&distributionPath, "write-distribution", "", "write the count distribution of every order to this path")
	cmd.Flags().BoolVar(&withCutoff, "cutoff", false, "include each order's cutoff count in the distribution")
	return cmd
}
