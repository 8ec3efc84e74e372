// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/jcodagnone/storeaudit/highlight"
	"github.com/jcodagnone/storeaudit/store"
	"github.com/spf13/cobra"
)

var (
	highlightConfig    = highlight.DefaultConfig()
	highlightDelimiter string
	highlightXLSX      string
)

var highlightCmd = &cobra.Command{
	Use:   "highlight",
	Short: "Compares each store's latitude/longitude with its postcode",
	Long: `Reads the tab separated store finder export from stdin and writes it as CSV
to stdout with six extra columns:

  _postcode_latitude, _postcode_longitude  location of the postcode
  _postcode_vs_lat_long                    meters between both locations
  _postcode_error                          why the postcode could not be resolved
  _postcode_map_url, _lat_long_map_url     map links for both locations

$ storeaudit highlight < stores.tsv > highlighted.csv
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) (err error) {
		delimiter, err := parseDelimiter(highlightDelimiter)
		if err != nil {
			return err
		}

		config := highlightConfig
		config.Delimiter = delimiter

		var out store.RowWriter = store.NewCSVWriter(cmd.OutOrStdout())

		if highlightXLSX != "" {
			xlsx := highlight.NewXLSXWriter(highlightXLSX)
			defer func() {
				err = errors.Join(err, xlsx.Close())
			}()

			out = store.MultiWriter{out, xlsx}
		}

		pipeline := highlight.NewPipeline(newPostcodesClient(), config)
		pipeline.Verbose = verbose

		if err := pipeline.Run(cmd.Context(), cmd.InOrStdin(), out); err != nil {
			return fmt.Errorf("highlighting stores: %w", err)
		}

		log.Println("All done.")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(highlightCmd)
	addPostcodesFlags(highlightCmd)

	highlightCmd.Flags().StringVar(
		&highlightDelimiter,
		"input-delimiter",
		"tab",
		"Field delimiter of the input",
	)
	highlightCmd.Flags().StringVar(
		&highlightConfig.PostcodeField,
		"postcode-field",
		highlightConfig.PostcodeField,
		"Input column holding the postcode",
	)
	highlightCmd.Flags().StringVar(
		&highlightConfig.LatitudeField,
		"latitude-field",
		highlightConfig.LatitudeField,
		"Input column holding the claimed latitude",
	)
	highlightCmd.Flags().StringVar(
		&highlightConfig.LongitudeField,
		"longitude-field",
		highlightConfig.LongitudeField,
		"Input column holding the claimed longitude",
	)
	highlightCmd.Flags().StringVar(
		&highlightConfig.MapURLTemplate,
		"map-url",
		highlightConfig.MapURLTemplate,
		"Map link template, {lat} and {lng} are replaced",
	)
	highlightCmd.Flags().StringVar(
		&highlightXLSX,
		"xlsx",
		"",
		"Also write the output to this spreadsheet",
	)
}
