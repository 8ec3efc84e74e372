// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package store holds the tabular representation of a store locator export:
// a header resolved once per file, and the records that follow it.
package store

import (
	"fmt"
	"strings"
)

// Header is the ordered list of column names of an export.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a header. Later duplicates of a column name are ignored
// for lookups but kept in Names so the file can be written back verbatim.
func NewHeader(names []string) *Header {
	h := &Header{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}

	for i, name := range h.names {
		if _, ok := h.index[name]; !ok {
			h.index[name] = i
		}
	}

	return h
}

// Names returns a copy of the column names, in file order.
func (h *Header) Names() []string {
	return append([]string(nil), h.names...)
}

// Len returns the number of columns.
func (h *Header) Len() int {
	return len(h.names)
}

// Index returns the position of a column.
func (h *Header) Index(name string) (int, bool) {
	i, ok := h.index[name]

	return i, ok
}

// Require returns the positions of the given columns, or an error naming
// every missing one.
func (h *Header) Require(names ...string) ([]int, error) {
	positions := make([]int, len(names))

	var missing []string

	for i, name := range names {
		pos, ok := h.index[name]
		if !ok {
			missing = append(missing, name)

			continue
		}

		positions[i] = pos
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}

	return positions, nil
}

// Record is one row of an export, aligned with its header.
type Record struct {
	// Line is the 1-based line number of the row in the input.
	Line   int
	header *Header
	values []string
}

// NewRecord aligns values with the header: short rows are padded with empty
// values and long rows are truncated.
func NewRecord(header *Header, line int, values []string) Record {
	aligned := make([]string, header.Len())
	copy(aligned, values)

	return Record{Line: line, header: header, values: aligned}
}

// Get returns the value of a column, or "" when the column does not exist.
func (r Record) Get(name string) string {
	if r.header == nil {
		return ""
	}

	if i, ok := r.header.Index(name); ok {
		return r.values[i]
	}

	return ""
}

// At returns the value at a column position.
func (r Record) At(i int) string {
	if i < 0 || i >= len(r.values) {
		return ""
	}

	return r.values[i]
}

// Values returns a copy of the row values, in header order.
func (r Record) Values() []string {
	return append([]string(nil), r.values...)
}

// Map returns the row as a column name to value map, for logging.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	if r.header == nil {
		return m
	}

	for i, name := range r.header.names {
		if _, ok := m[name]; !ok {
			m[name] = r.values[i]
		}
	}

	return m
}
