// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRequire(t *testing.T) {
	h := NewHeader([]string{"store_name", "pc", "latitude", "longitude"})

	positions, err := h.Require("pc", "longitude")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, positions)

	_, err = h.Require("pc", "business", "branch_code")
	require.Error(t, err)
	assert.Equal(t, "missing required column(s): business, branch_code", err.Error())
}

func TestHeaderDuplicates(t *testing.T) {
	h := NewHeader([]string{"a", "b", "a"})

	i, ok := h.Index("a")
	assert.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, []string{"a", "b", "a"}, h.Names())
	assert.Equal(t, 3, h.Len())
}

func TestRecordAlignment(t *testing.T) {
	h := NewHeader([]string{"a", "b", "c"})

	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"exact", []string{"1", "2", "3"}, []string{"1", "2", "3"}},
		{"short", []string{"1"}, []string{"1", "", ""}},
		{"long", []string{"1", "2", "3", "4"}, []string{"1", "2", "3"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRecord(h, 2, tc.values)
			assert.Equal(t, tc.want, r.Values())
			assert.Equal(t, 2, r.Line)
		})
	}
}

func TestRecordAccessors(t *testing.T) {
	h := NewHeader([]string{"business", "store_name"})
	r := NewRecord(h, 2, []string{"Food Store", "High Street"})

	assert.Equal(t, "Food Store", r.Get("business"))
	assert.Equal(t, "", r.Get("branch_code"))
	assert.Equal(t, "High Street", r.At(1))
	assert.Equal(t, "", r.At(5))
	assert.Equal(t, map[string]string{"business": "Food Store", "store_name": "High Street"}, r.Map())

	var zero Record
	assert.Equal(t, "", zero.Get("business"))
	assert.Empty(t, zero.Map())

	// Values returns a copy
	v := r.Values()
	v[0] = "Pharmacy"
	assert.Equal(t, "Food Store", r.Get("business"))
}
