// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package colocation finds distinct stores that resolve to the same rounded
// coordinates, which usually means a duplicated listing.
package colocation

import (
	"fmt"
	"strings"

	"github.com/jcodagnone/storeaudit/spatial"
	"github.com/jcodagnone/storeaudit/store"
	"github.com/uber/h3-go/v4"
)

// Input columns.
const (
	FieldBusiness   = "business"
	FieldStoreName  = "store_name"
	FieldBranchCode = "branch_code"
	FieldLatitude   = "_postcode_latitude"
	FieldLongitude  = "_postcode_longitude"
)

// Config selects which stores are compared and how locations are bucketed.
type Config struct {
	// Categories are case-sensitive substrings of the business column; a
	// store is compared when its business contains any of them.
	Categories []string

	// Precision is the number of decimals coordinates are rounded to.
	Precision int

	// H3Resolution buckets by H3 cell instead of rounded coordinates when > 0.
	H3Resolution int

	Delimiter rune
}

// DefaultConfig compares food and funeral businesses at 4 decimals (~11m).
func DefaultConfig() Config {
	return Config{
		Categories: []string{"Food", "Funeral"},
		Precision:  4,
		Delimiter:  ',',
	}
}

// Bounds of the bucketing settings.
const (
	MaxPrecision    = 15
	MaxH3Resolution = 15
)

// Validate checks the bucketing settings.
func (c Config) Validate() error {
	if c.Precision < 0 || c.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d, got %d", MaxPrecision, c.Precision)
	}

	if c.H3Resolution < 0 || c.H3Resolution > MaxH3Resolution {
		return fmt.Errorf("h3 resolution must be between 0 and %d, got %d", MaxH3Resolution, c.H3Resolution)
	}

	return nil
}

// KeyFunc maps a coordinate to its bucket.
type KeyFunc func(p spatial.Point) (string, error)

// RoundedKey rounds each component independently and joins them as "lat,lng".
// Two points only share a key when both rounded strings match, so points that
// straddle a rounding boundary land in different buckets even when they are
// closer than the precision.
func RoundedKey(precision int) KeyFunc {
	return func(p spatial.Point) (string, error) {
		return spatial.FormatFloat(spatial.Round(p.Lat, precision)) + "," +
			spatial.FormatFloat(spatial.Round(p.Lng, precision)), nil
	}
}

// H3Key buckets points by the H3 cell that contains them.
func H3Key(resolution int) KeyFunc {
	return func(p spatial.Point) (string, error) {
		cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), resolution)
		if err != nil {
			return "", fmt.Errorf("error converting to h3 cell at res %d: %w", resolution, err)
		}

		return cell.String(), nil
	}
}

// KeyFunc returns the bucketing strategy selected by the configuration.
func (c Config) KeyFunc() KeyFunc {
	if c.H3Resolution > 0 {
		return H3Key(c.H3Resolution)
	}

	return RoundedKey(c.Precision)
}

// Matches reports whether a business belongs to one of the compared categories.
func (c Config) Matches(business string) bool {
	for _, category := range c.Categories {
		if strings.Contains(business, category) {
			return true
		}
	}

	return false
}

// LocatedStore is an input row with the columns the detector reads.
type LocatedStore struct {
	Line       int
	Business   string
	StoreName  string
	BranchCode string
	Latitude   string
	Longitude  string
}

// Schema binds the detector columns to the header of an export.
type Schema struct {
	business, storeName, latitude, longitude int
	branchCode                               int // -1 when the column is absent
}

// Bind resolves the columns in header; branch_code is optional.
func Bind(header *store.Header) (*Schema, error) {
	pos, err := header.Require(FieldBusiness, FieldStoreName, FieldLatitude, FieldLongitude)
	if err != nil {
		return nil, err
	}

	branchCode, ok := header.Index(FieldBranchCode)
	if !ok {
		branchCode = -1
	}

	return &Schema{
		business:   pos[0],
		storeName:  pos[1],
		latitude:   pos[2],
		longitude:  pos[3],
		branchCode: branchCode,
	}, nil
}

// Store extracts the detector inputs of a record.
func (s *Schema) Store(r store.Record) LocatedStore {
	return LocatedStore{
		Line:       r.Line,
		Business:   r.At(s.business),
		StoreName:  r.At(s.storeName),
		BranchCode: r.At(s.branchCode),
		Latitude:   r.At(s.latitude),
		Longitude:  r.At(s.longitude),
	}
}

// Group is the stores sharing a location key, in input order.
type Group struct {
	Key    string
	Stores []LocatedStore
}

// Outcome tells what Observe did with a store.
type Outcome struct {
	Filtered bool   // business not in the compared categories
	Key      string // set when the store was grouped
	Err      error  // coordinates could not be parsed or keyed
}

// Kept reports whether the store was added to a group.
func (o Outcome) Kept() bool {
	return !o.Filtered && o.Err == nil
}

// Metrics tracks the outcome of a run.
type Metrics struct {
	Rows     int
	Filtered int
	Invalid  int
	Kept     int
	Groups   int
}

// Merge combines two Metrics.
func (m *Metrics) Merge(o *Metrics) *Metrics {
	m.Rows += o.Rows
	m.Filtered += o.Filtered
	m.Invalid += o.Invalid
	m.Kept += o.Kept
	m.Groups += o.Groups

	return m
}

// Detector accumulates stores by location key in a single pass.
type Detector struct {
	config  Config
	key     KeyFunc
	groups  map[string]*Group
	order   []string
	Verbose bool
	Metrics Metrics
}

func NewDetector(config Config) *Detector {
	return &Detector{
		config: config,
		key:    config.KeyFunc(),
		groups: make(map[string]*Group),
	}
}

// Observe considers one store for grouping.
func (d *Detector) Observe(s LocatedStore) Outcome {
	d.Metrics.Rows++

	if !d.config.Matches(s.Business) {
		d.Metrics.Filtered++

		return Outcome{Filtered: true}
	}

	p, err := spatial.ParsePoint(s.Latitude, s.Longitude)
	if err != nil {
		d.Metrics.Invalid++

		return Outcome{Err: err}
	}

	key, err := d.key(p)
	if err != nil {
		d.Metrics.Invalid++

		return Outcome{Err: err}
	}

	g, ok := d.groups[key]
	if !ok {
		g = &Group{Key: key}
		d.groups[key] = g
		d.order = append(d.order, key)
	}

	g.Stores = append(g.Stores, s)
	d.Metrics.Kept++

	return Outcome{Key: key}
}

// Groups returns every group in first-seen order.
func (d *Detector) Groups() []Group {
	groups := make([]Group, 0, len(d.order))
	for _, key := range d.order {
		groups = append(groups, *d.groups[key])
	}

	return groups
}

// Colocated returns the groups holding more than one store, in first-seen order.
func (d *Detector) Colocated() []Group {
	var groups []Group

	for _, g := range d.Groups() {
		if len(g.Stores) > 1 {
			groups = append(groups, g)
		}
	}

	return groups
}
