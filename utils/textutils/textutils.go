// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils provides small text helpers shared by the audit pipelines.
package textutils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizePostcode folds a postcode to its canonical lookup form: compatibility
// normalised (full-width letters and digits become ASCII), upper case, and
// without any whitespace. "sw1a 1aa" and "SW1A1AA" normalise to the same key.
func NormalizePostcode(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.White_Space)),
		),
		s,
	)

	return strings.ToUpper(s)
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}

// Placeholder returns s, or fallback when s is empty.
func Placeholder(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}
