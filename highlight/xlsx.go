// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package highlight

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// XLSXWriter writes the enriched rows into a spreadsheet, saved on Close.
type XLSXWriter struct {
	f    *excelize.File
	path string
	row  int
}

func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{f: excelize.NewFile(), path: path}
}

func (w *XLSXWriter) Write(values []string) error {
	w.row++

	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}

	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	return w.f.SetSheetRow(xlsxSheet, cell, &row)
}

// Flush is a no-op; the workbook is written by Close.
func (w *XLSXWriter) Flush() error {
	return nil
}

// Close saves the workbook and releases it.
func (w *XLSXWriter) Close() error {
	if err := w.f.SaveAs(w.path); err != nil {
		return errors.Join(fmt.Errorf("saving %s: %w", w.path, err), w.f.Close())
	}

	return w.f.Close()
}
