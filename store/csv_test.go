// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) []Record {
	t.Helper()

	var records []Record

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records
		}

		require.NoError(t, err)

		records = append(records, rec)
	}
}

func TestReaderTabDelimited(t *testing.T) {
	input := "\ufeffstore_name\tpc\tlatitude\tlongitude\n" +
		"Victoria\tSW1A 1AA\t51.501\t-0.1416\n" +
		"Short\tEC1A 1BB\n"

	r, err := NewReader(strings.NewReader(input), '\t')
	require.NoError(t, err)
	assert.Equal(t, []string{"store_name", "pc", "latitude", "longitude"}, r.Header().Names())

	records := readAll(t, r)
	require.Len(t, records, 2)
	assert.Equal(t, "SW1A 1AA", records[0].Get("pc"))
	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, []string{"Short", "EC1A 1BB", "", ""}, records[1].Values())
	assert.Equal(t, 3, records[1].Line)
}

func TestReaderQuotedComma(t *testing.T) {
	input := "business,store_name\n\"Food, Grocery\",\"The \"\"Corner\"\" Shop\"\n"

	r, err := NewReader(strings.NewReader(input), ',')
	require.NoError(t, err)

	records := readAll(t, r)
	require.Len(t, records, 1)
	assert.Equal(t, "Food, Grocery", records[0].Get("business"))
	assert.Equal(t, `The "Corner" Shop`, records[0].Get("store_name"))
}

func TestReaderEmptyInput(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), ',')
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty input")
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer

	w := NewCSVWriter(&buf)
	require.NoError(t, w.Write([]string{"store_name", "_postcode_error"}))
	require.NoError(t, w.Write([]string{"Victoria, SW1", ""}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "store_name,_postcode_error\r\n\"Victoria, SW1\",\r\n", buf.String())
}

type failingWriter struct{ flushed bool }

func (f *failingWriter) Write(_ []string) error { return errors.New("disk full") }

func (f *failingWriter) Flush() error {
	f.flushed = true

	return errors.New("flush failed")
}

func TestMultiWriter(t *testing.T) {
	var a, b bytes.Buffer

	m := MultiWriter{NewCSVWriter(&a), NewCSVWriter(&b)}
	require.NoError(t, m.Write([]string{"x", "y"}))
	require.NoError(t, m.Flush())
	assert.Equal(t, "x,y\r\n", a.String())
	assert.Equal(t, a.String(), b.String())

	failing := &failingWriter{}
	m = MultiWriter{failing, NewCSVWriter(&a)}
	require.Error(t, m.Write([]string{"x"}))
	require.Error(t, m.Flush())
	assert.True(t, failing.flushed)
}
