// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jcodagnone/storeaudit/postcodes"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "storeaudit",
	Short: "audits a store locator export",
	Long: `
storeaudit checks a store locator export for two kinds of problems: stores
whose latitude/longitude disagree with the location of their postcode, and
distinct stores that resolve to the same location (likely duplicates).
`,
	SilenceUsage: true,
}

var (
	Version = "dev"
	verbose bool
)

var postcodesOptions = &postcodes.ClientOptions{}

// addPostcodesFlags registers the lookup service flags on commands that resolve postcodes.
func addPostcodesFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&postcodesOptions.BaseURL,
		"postcodes-url",
		postcodes.DefaultBaseURL,
		"Base URL of the postcodes service (e.g. http://localhost:8000 for a local instance)",
	)
	cmd.PersistentFlags().StringVar(
		&postcodesOptions.UserAgent,
		"user-agent",
		"",
		"User-Agent sent to the postcodes service (default storeaudit/<version>)",
	)
	cmd.PersistentFlags().DurationVar(
		&postcodesOptions.Timeout,
		"timeout",
		0,
		"Timeout of each postcode lookup, 0 waits indefinitely",
	)
	cmd.PersistentFlags().Float64Var(
		&postcodesOptions.RateLimit,
		"rate-limit",
		0,
		"Maximum postcode lookups per second, 0 is unlimited",
	)
	cmd.PersistentFlags().BoolVar(
		&postcodesOptions.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	cmd.PersistentFlags().BoolVar(
		&postcodesOptions.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}

func newPostcodesClient() *postcodes.Client {
	if postcodesOptions.UserAgent == "" {
		postcodesOptions.UserAgent = fmt.Sprintf("storeaudit/%s", Version)
	}

	return postcodes.NewClient(postcodesOptions)
}

// parseDelimiter accepts a single character, or "tab"/"\t" for a tab.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "tab", `\t`, "\t":
		return '\t', nil
	}

	r := []rune(s)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}

	return r[0], nil
}

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Log every input row",
	)
}
