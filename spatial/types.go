// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const earthRadius = 6371e3 // meters

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParsePoint parses a latitude and a longitude given as decimal strings.
func ParsePoint(lat, lng string) (Point, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}

	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid longitude %q: %w", lng, err)
	}

	return Point{Lat: la, Lng: ln}, nil
}

// String returns the point as "lat,lng".
func (p Point) String() string {
	return FormatFloat(p.Lat) + "," + FormatFloat(p.Lng)
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p Point) HaversineDistance(other Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Distance returns the haversine distance in meters rounded to two decimals.
func Distance(a, b Point) float64 {
	return Round(a.HaversineDistance(b), 2)
}

// Round rounds v to the given number of decimal places, half away from zero.
// Places too large or too small for a float64 scale leave v unchanged.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	if scale == 0 || math.IsInf(scale, 0) {
		return v
	}

	scaled := v * scale
	if math.IsInf(scaled, 0) {
		return v
	}

	r := math.Round(scaled) / scale
	if r == 0 {
		return 0 // drop negative zero
	}

	return r
}

// FormatFloat renders v with the shortest representation that round-trips,
// always keeping a decimal part ("0.0", "51.5", "-0.1278").
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}

	return s
}
