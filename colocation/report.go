// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package colocation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jcodagnone/storeaudit/store"
	"github.com/jcodagnone/storeaudit/utils/textutils"
)

// NoBranchCode is printed for stores without a branch code.
const NoBranchCode = "[no branch code]"

// WriteReport prints each group as a header line, one line per store and a
// blank separator.
func WriteReport(w io.Writer, groups []Group) error {
	for _, g := range groups {
		if _, err := fmt.Fprintf(w, "%d locations at %s\n", len(g.Stores), g.Key); err != nil {
			return err
		}

		for _, s := range g.Stores {
			if _, err := fmt.Fprintf(w, " - %s (%s): %s\n",
				textutils.Placeholder(s.BranchCode, NoBranchCode),
				s.Business,
				s.StoreName,
			); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}

// Run reads an enriched export, groups the matching stores and writes the
// report of co-located ones. Rows with unparseable coordinates are logged
// and dropped.
func (d *Detector) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	reader, err := store.NewReader(in, d.config.Delimiter)
	if err != nil {
		return err
	}

	schema, err := Bind(reader.Header())
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return err
		}

		if d.Verbose {
			log.Printf("Input row %d: %v", record.Line, record.Map())
		}

		if outcome := d.Observe(schema.Store(record)); outcome.Err != nil {
			log.Printf("Row %d: %v", record.Line, outcome.Err)
		}
	}

	colocated := d.Colocated()
	d.Metrics.Groups = len(colocated)

	if err := WriteReport(out, colocated); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	log.Printf(
		"Co-location complete - %s rows, %s compared, %s invalid, %s groups",
		textutils.FormatInt(int64(d.Metrics.Rows)),
		textutils.FormatInt(int64(d.Metrics.Kept)),
		textutils.FormatInt(int64(d.Metrics.Invalid)),
		textutils.FormatInt(int64(d.Metrics.Groups)),
	)

	return nil
}
