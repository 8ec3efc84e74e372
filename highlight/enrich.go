// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package highlight flags stores whose claimed coordinates disagree with the
// coordinates of their postcode.
package highlight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jcodagnone/storeaudit/postcodes"
	"github.com/jcodagnone/storeaudit/spatial"
	"github.com/jcodagnone/storeaudit/store"
)

// Columns appended to every output row, in this order.
const (
	FieldPostcodeLatitude  = "_postcode_latitude"
	FieldPostcodeLongitude = "_postcode_longitude"
	FieldPostcodeVsLatLong = "_postcode_vs_lat_long"
	FieldPostcodeError     = "_postcode_error"
	FieldPostcodeMapURL    = "_postcode_map_url"
	FieldLatLongMapURL     = "_lat_long_map_url"
)

// DerivedFields lists the appended columns in output order.
var DerivedFields = []string{
	FieldPostcodeLatitude,
	FieldPostcodeLongitude,
	FieldPostcodeVsLatLong,
	FieldPostcodeError,
	FieldPostcodeMapURL,
	FieldLatLongMapURL,
}

// ErrInvalidClaim is returned when a row's own latitude/longitude cannot be parsed.
var ErrInvalidClaim = errors.New("invalid claimed coordinate")

// DefaultMapURLTemplate links to a map centered on {lat},{lng}.
const DefaultMapURLTemplate = "https://www.google.com/maps?q={lat},{lng}"

// Config names the input columns and the map link format.
type Config struct {
	PostcodeField  string
	LatitudeField  string
	LongitudeField string
	MapURLTemplate string
	Delimiter      rune
}

// DefaultConfig matches the store finder export.
func DefaultConfig() Config {
	return Config{
		PostcodeField:  "pc",
		LatitudeField:  "latitude",
		LongitudeField: "longitude",
		MapURLTemplate: DefaultMapURLTemplate,
		Delimiter:      '\t',
	}
}

// Store is an input row with the columns the enrichment reads.
type Store struct {
	store.Record
	Postcode  string
	Latitude  string
	Longitude string
}

// Schema binds a Config to the header of an export.
type Schema struct {
	header                        *store.Header
	postcode, latitude, longitude int
}

// Bind resolves the configured columns in header; missing columns are an error.
func (c Config) Bind(header *store.Header) (*Schema, error) {
	pos, err := header.Require(c.PostcodeField, c.LatitudeField, c.LongitudeField)
	if err != nil {
		return nil, err
	}

	return &Schema{header: header, postcode: pos[0], latitude: pos[1], longitude: pos[2]}, nil
}

// OutputHeader returns the input columns followed by DerivedFields.
func (s *Schema) OutputHeader() []string {
	return append(s.header.Names(), DerivedFields...)
}

// Store extracts the enrichment inputs of a record.
func (s *Schema) Store(r store.Record) Store {
	return Store{
		Record:    r,
		Postcode:  r.At(s.postcode),
		Latitude:  r.At(s.latitude),
		Longitude: r.At(s.longitude),
	}
}

// Result is the outcome of enriching one row: either a resolved coordinate
// with its distance to the claimed one, or an error.
type Result struct {
	Claimed  spatial.Point
	Resolved spatial.Point
	Distance float64 // meters, two decimals
	Err      error
}

// OK reports whether the postcode was resolved.
func (r Result) OK() bool {
	return r.Err == nil
}

// Derived holds the appended column values of a row.
type Derived struct {
	PostcodeLatitude  string
	PostcodeLongitude string
	PostcodeVsLatLong string
	PostcodeError     string
	PostcodeMapURL    string
	LatLongMapURL     string
}

// Values returns the derived values in DerivedFields order.
func (d Derived) Values() []string {
	return []string{
		d.PostcodeLatitude,
		d.PostcodeLongitude,
		d.PostcodeVsLatLong,
		d.PostcodeError,
		d.PostcodeMapURL,
		d.LatLongMapURL,
	}
}

// Enricher resolves postcodes and compares them with the claimed coordinates.
type Enricher struct {
	resolver postcodes.Resolver
	template string
}

func NewEnricher(resolver postcodes.Resolver, config Config) *Enricher {
	template := config.MapURLTemplate
	if template == "" {
		template = DefaultMapURLTemplate
	}

	return &Enricher{resolver: resolver, template: template}
}

// MapURL renders the map link of a point.
func (e *Enricher) MapURL(p spatial.Point) string {
	return strings.NewReplacer(
		"{lat}", spatial.FormatFloat(p.Lat),
		"{lng}", spatial.FormatFloat(p.Lng),
	).Replace(e.template)
}

// Enrich resolves the postcode of s. A row whose claimed coordinate does not
// parse fails without issuing a lookup.
func (e *Enricher) Enrich(ctx context.Context, s Store) Result {
	claimed, err := spatial.ParsePoint(s.Latitude, s.Longitude)
	if err != nil {
		return Result{Err: fmt.Errorf("%w: %w", ErrInvalidClaim, err)}
	}

	resolved, err := e.resolver.Resolve(ctx, s.Postcode)
	if err != nil {
		return Result{Claimed: claimed, Err: err}
	}

	return Result{
		Claimed:  claimed,
		Resolved: resolved,
		Distance: spatial.Distance(resolved, claimed),
	}
}

// Derive renders a Result: all the fields on success, only the error otherwise.
func (e *Enricher) Derive(r Result) Derived {
	if !r.OK() {
		return Derived{PostcodeError: r.Err.Error()}
	}

	return Derived{
		PostcodeLatitude:  spatial.FormatFloat(r.Resolved.Lat),
		PostcodeLongitude: spatial.FormatFloat(r.Resolved.Lng),
		PostcodeVsLatLong: spatial.FormatFloat(r.Distance),
		PostcodeMapURL:    e.MapURL(r.Resolved),
		LatLongMapURL:     e.MapURL(r.Claimed),
	}
}
