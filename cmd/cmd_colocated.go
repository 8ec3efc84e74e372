// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/jcodagnone/storeaudit/colocation"
	"github.com/spf13/cobra"
)

var (
	colocatedConfig    = colocation.DefaultConfig()
	colocatedDelimiter string
)

var colocatedCmd = &cobra.Command{
	Use:   "colocated",
	Short: "Lists stores sharing the same location",
	Long: `Reads the CSV written by 'highlight' from stdin and prints the groups of
food and funeral stores whose postcode locations round to the same coordinates.

$ storeaudit colocated < highlighted.csv
2 locations at 51.5001,-0.1278
 - B001 (Food Store): High Street
 - [no branch code] (Funeral Home): Chapel Road
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		delimiter, err := parseDelimiter(colocatedDelimiter)
		if err != nil {
			return err
		}

		config := colocatedConfig
		config.Delimiter = delimiter

		if err := config.Validate(); err != nil {
			return err
		}

		detector := colocation.NewDetector(config)
		detector.Verbose = verbose

		if err := detector.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("finding co-located stores: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(colocatedCmd)

	colocatedCmd.Flags().StringVar(
		&colocatedDelimiter,
		"input-delimiter",
		",",
		"Field delimiter of the input",
	)
	colocatedCmd.Flags().StringSliceVar(
		&colocatedConfig.Categories,
		"category",
		colocatedConfig.Categories,
		"Business substrings (case-sensitive) of the stores to compare",
	)
	colocatedCmd.Flags().IntVar(
		&colocatedConfig.Precision,
		"precision",
		colocatedConfig.Precision,
		"Decimals coordinates are rounded to before comparing",
	)
	colocatedCmd.Flags().IntVar(
		&colocatedConfig.H3Resolution,
		"h3-resolution",
		0,
		"Group by H3 cell at this resolution instead of rounded coordinates",
	)
}
