// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/jcodagnone/storeaudit/postcodes"
	"github.com/jcodagnone/storeaudit/utils/textutils"
	"github.com/spf13/cobra"
)

var (
	postcodesData string
	postcodesAddr string
)

var postcodesCmd = &cobra.Command{
	Use:   "postcodes",
	Short: "Postcode lookup tools",
}

var postcodesServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local postcodes service from a CSV lookup table",
	Long: `Serves GET /postcodes/:postcode with the same JSON contract as postcodes.io,
answering from a "postcode,latitude,longitude" CSV file. Point 'highlight' at
it with --postcodes-url to audit without calling the public service.

$ storeaudit postcodes serve --data lookup.csv --addr localhost:8000
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if postcodesData == "" {
			return fmt.Errorf("--data is required")
		}

		lookup, err := postcodes.LoadLookupFile(postcodesData)
		if err != nil {
			return err
		}

		log.Printf("Loaded %s postcodes from %s", textutils.FormatInt(int64(len(lookup))), postcodesData)
		log.Printf("Listening on http://%s", postcodesAddr)

		return postcodes.NewServer(lookup).Run(postcodesAddr)
	},
}

func init() {
	rootCmd.AddCommand(postcodesCmd)
	postcodesCmd.AddCommand(postcodesServeCmd)

	postcodesServeCmd.Flags().StringVar(
		&postcodesData,
		"data",
		"",
		"CSV file with postcode,latitude,longitude columns",
	)
	postcodesServeCmd.Flags().StringVar(
		&postcodesAddr,
		"addr",
		"localhost:8000",
		"Address to listen on",
	)
}
