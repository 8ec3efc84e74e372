// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
)

const utf8BOM = "\ufeff"

// Reader reads records from a delimited export with a header row.
type Reader struct {
	r      *csv.Reader
	header *Header
}

// NewReader reads the header row and returns a reader positioned on the first record.
func NewReader(r io.Reader, delimiter rune) (*Reader, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	names, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("reading header: empty input")
	}

	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if len(names) > 0 {
		names[0] = strings.TrimPrefix(names[0], utf8BOM)
	}

	return &Reader{r: reader, header: NewHeader(names)}, nil
}

// Header returns the header of the export.
func (r *Reader) Header() *Header {
	return r.header
}

// Read returns the next record, or io.EOF when the input is exhausted.
func (r *Reader) Read() (Record, error) {
	values, err := r.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}

		return Record{}, fmt.Errorf("reading record: %w", err)
	}

	line, _ := r.r.FieldPos(0)
	if len(values) > r.header.Len() {
		log.Printf("Line %d has %d fields, header has %d; extra fields dropped", line, len(values), r.header.Len())
	}

	return NewRecord(r.header, line, values), nil
}

// RowWriter receives output rows, header first.
type RowWriter interface {
	Write(values []string) error
	Flush() error
}

// CSVWriter writes comma separated rows terminated by CRLF.
type CSVWriter struct {
	w *csv.Writer
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	return &CSVWriter{w: writer}
}

func (w *CSVWriter) Write(values []string) error {
	return w.w.Write(values)
}

func (w *CSVWriter) Flush() error {
	w.w.Flush()

	return w.w.Error()
}

// MultiWriter duplicates every row to all the writers.
type MultiWriter []RowWriter

func (m MultiWriter) Write(values []string) error {
	for _, w := range m {
		if err := w.Write(values); err != nil {
			return err
		}
	}

	return nil
}

func (m MultiWriter) Flush() error {
	var errs []error
	for _, w := range m {
		errs = append(errs, w.Flush())
	}

	return errors.Join(errs...)
}
