// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package postcodes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/storeaudit/utils/textutils"
)

// Lookup maps normalised postcodes to their location.
type Lookup map[string]*lookupLocation

// Add registers a postcode. Nil coordinates are served as null, the way the
// public service answers for postcodes without a grid reference.
func (l Lookup) Add(postcode string, lat, lng *float64) {
	l[textutils.NormalizePostcode(postcode)] = &lookupLocation{
		Postcode:  strings.TrimSpace(postcode),
		Latitude:  lat,
		Longitude: lng,
	}
}

func parseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// LoadLookup reads a "postcode,latitude,longitude" CSV with a header row.
func LoadLookup(r io.Reader) (Lookup, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading lookup header: %w", err)
	}

	lookup := make(Lookup)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading lookup: %w", err)
		}

		lat, err := parseOptionalFloat(record[1])
		if err != nil {
			return nil, fmt.Errorf("postcode %s: invalid latitude: %w", record[0], err)
		}

		lng, err := parseOptionalFloat(record[2])
		if err != nil {
			return nil, fmt.Errorf("postcode %s: invalid longitude: %w", record[0], err)
		}

		lookup.Add(record[0], lat, lng)
	}

	return lookup, nil
}

// LoadLookupFile loads a lookup table from a CSV file.
func LoadLookupFile(path string) (Lookup, error) {
	f, err := os.Open(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("opening lookup file: %w", err)
	}
	defer f.Close()

	return LoadLookup(f)
}

// Server is a local stand-in for the postcodes service, answering
// GET /postcodes/:postcode from an in-memory lookup table.
type Server struct {
	lookup Lookup
}

func NewServer(lookup Lookup) *Server {
	return &Server{lookup: lookup}
}

// Router returns the gin engine serving the lookup API.
func (s *Server) Router(middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware...)
	r.GET("/postcodes/:postcode", s.lookupPostcode)
	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, lookupResponse{Status: http.StatusNotFound, Error: "Resource not found"})
	})

	return r
}

func (s *Server) Run(addr string) error {
	return s.Router(gin.Logger()).Run(addr)
}

func (s *Server) lookupPostcode(ctx *gin.Context) {
	location, ok := s.lookup[textutils.NormalizePostcode(ctx.Param("postcode"))]
	if !ok {
		ctx.JSON(http.StatusNotFound, lookupResponse{Status: http.StatusNotFound, Error: "Postcode not found"})

		return
	}

	ctx.JSON(http.StatusOK, lookupResponse{Status: http.StatusOK, Result: location})
}
