// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package highlight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jcodagnone/storeaudit/postcodes"
	"github.com/jcodagnone/storeaudit/store"
	"github.com/jcodagnone/storeaudit/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Metrics tracks the outcome of a run.
type Metrics struct {
	Rows     int
	Resolved int
	Failed   int
}

// Merge combines two Metrics.
func (m *Metrics) Merge(o *Metrics) *Metrics {
	m.Rows += o.Rows
	m.Resolved += o.Resolved
	m.Failed += o.Failed

	return m
}

// Pipeline reads an export, enriches each row and writes it out immediately.
type Pipeline struct {
	config   Config
	enricher *Enricher
	Verbose  bool
	Metrics  Metrics
}

func NewPipeline(resolver postcodes.Resolver, config Config) *Pipeline {
	return &Pipeline{
		config:   config,
		enricher: NewEnricher(resolver, config),
	}
}

// Run processes every row of in. Lookup failures are recorded in the row and
// never stop the run; only read/write failures do.
func (p *Pipeline) Run(ctx context.Context, in io.Reader, out store.RowWriter) error {
	reader, err := store.NewReader(in, p.config.Delimiter)
	if err != nil {
		return err
	}

	schema, err := p.config.Bind(reader.Header())
	if err != nil {
		return err
	}

	if err := out.Write(schema.OutputHeader()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Highlighting"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
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

		if p.Verbose {
			log.Printf("Input row %d: %v", record.Line, record.Map())
		}

		result := p.enricher.Enrich(ctx, schema.Store(record))
		p.Metrics.Rows++

		if result.OK() {
			p.Metrics.Resolved++
		} else {
			p.Metrics.Failed++
			log.Printf("Row %d: %v", record.Line, result.Err)
		}

		values := append(record.Values(), p.enricher.Derive(result).Values()...)
		if err := out.Write(values); err != nil {
			return fmt.Errorf("writing row %d: %w", record.Line, err)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}

	log.Printf(
		"Highlight complete - %s rows, %s resolved, %s failed",
		textutils.FormatInt(int64(p.Metrics.Rows)),
		textutils.FormatInt(int64(p.Metrics.Resolved)),
		textutils.FormatInt(int64(p.Metrics.Failed)),
	)

	return nil
}
