// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jcodagnone/storeaudit/postcodes"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugGeocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve postcodes read from stdin",
	Long: `Reads one postcode per line, and prints the postcode followed by its
location, or by the reason it could not be resolved.

$ echo "SW1A 1AA" | storeaudit debug geocode
SW1A 1AA		51.501009,-0.141588
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter postcodes to resolve, one per line…")
		}

		client := newPostcodesClient()
		out := cmd.OutOrStdout()

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			postcode := strings.TrimSpace(scanner.Text())
			if postcode == "" {
				continue
			}

			p, err := client.Resolve(cmd.Context(), postcode)
			if err != nil {
				fmt.Fprintf(out, "%s\t%s\t%q\n", postcode, errorType(err), err)

				continue
			}

			fmt.Fprintf(out, "%s\t\t%s\n", postcode, p)
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		return nil
	},
}

// errorType returns the geocoding failure kind anywhere in err's chain.
func errorType(err error) postcodes.ErrorType {
	var geoErr *postcodes.GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type
	}

	return postcodes.ErrorTypeUnknown
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugGeocodeCmd)
	addPostcodesFlags(debugGeocodeCmd)
}
