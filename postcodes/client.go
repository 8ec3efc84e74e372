// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package postcodes resolves UK postcodes to coordinates through a
// postcodes.io compatible service, and can serve such a service locally.
package postcodes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jcodagnone/storeaudit/spatial"
	"github.com/jcodagnone/storeaudit/utils/httputils"
	"github.com/jcodagnone/storeaudit/utils/textutils"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public postcodes.io instance.
const DefaultBaseURL = "https://api.postcodes.io"

// maxPayloadInError bounds how much of a raw payload is quoted in an error.
const maxPayloadInError = 256

// Resolver resolves a postcode to its authoritative coordinate.
type Resolver interface {
	Resolve(ctx context.Context, postcode string) (spatial.Point, error)
}

// ClientOptions configuration for Client.
type ClientOptions struct {
	// BaseURL of the service, without the /postcodes suffix
	BaseURL string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// Overall timeout of each lookup. Zero means no timeout.
	Timeout time.Duration

	// RateLimit caps lookups per second. Zero means unlimited.
	RateLimit float64
}

// Client talks to a postcodes.io compatible service. Each Resolve issues a
// single synchronous GET; there is no caching and no retry.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new client with the provided options.
func NewClient(options *ClientOptions) *Client {
	if options == nil {
		options = &ClientOptions{}
	}

	var traceWriter io.Writer
	if options.EnableHTTPTrace || options.EnableHTTPBodyTrace {
		traceWriter = os.Stderr
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := "storeaudit/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	var limiter *rate.Limiter
	if options.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(options.RateLimit), 1)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: limiter,
		client: httputils.NewClient(httputils.ClientOptions{
			TraceWriter: traceWriter,
			TraceBody:   options.EnableHTTPBodyTrace,
			Timeout:     options.Timeout,
			Headers: map[string]string{
				"User-Agent": userAgent,
				"Accept":     "application/json",
			},
		}),
	}
}

// BaseURL returns the service base URL in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type lookupResponse struct {
	Status int             `json:"status"`
	Error  string          `json:"error,omitempty"`
	Result *lookupLocation `json:"result,omitempty"`
}

type lookupLocation struct {
	Postcode  string   `json:"postcode"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func quote(payload []byte) string {
	s := strings.TrimSpace(string(payload))
	if len(s) > maxPayloadInError {
		cut := maxPayloadInError
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}

		s = s[:cut] + "…"
	}

	return s
}

// Resolve returns the coordinate of a postcode, or a *GeocodingError.
func (c *Client) Resolve(ctx context.Context, postcode string) (spatial.Point, error) {
	key := textutils.NormalizePostcode(postcode)
	if key == "" {
		return spatial.Point{}, &GeocodingError{
			Type:     ErrorTypeNotFound,
			Postcode: postcode,
			Message:  "empty postcode",
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return spatial.Point{}, &GeocodingError{
				Type:     ErrorTypeTransport,
				Postcode: postcode,
				Message:  "waiting for rate limiter",
				Err:      err,
			}
		}
	}

	reqURL := c.baseURL + "/postcodes/" + url.PathEscape(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return spatial.Point{}, &GeocodingError{
			Type:     ErrorTypeTransport,
			Postcode: postcode,
			Message:  "building request",
			Err:      err,
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return spatial.Point{}, &GeocodingError{
			Type:     ErrorTypeTransport,
			Postcode: postcode,
			Message:  "geocoding request failed",
			Err:      err,
		}
	}

	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return spatial.Point{}, &GeocodingError{
			Type:     ErrorTypeTransport,
			Postcode: postcode,
			Message:  "reading response",
			Err:      err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return spatial.Point{}, ClassifyHTTPError(postcode, resp.StatusCode, payload)
	}

	return decodeLookup(postcode, payload)
}

func decodeLookup(postcode string, payload []byte) (spatial.Point, error) {
	var body lookupResponse
	if err := json.Unmarshal(payload, &body); err != nil {
		return spatial.Point{}, &GeocodingError{
			Type:     ErrorTypeMalformedResponse,
			Postcode: postcode,
			Message:  "decoding response",
			Err:      err,
		}
	}

	switch {
	case body.Status == http.StatusNotFound:
		return spatial.Point{}, &GeocodingError{
			Type:     ErrorTypeNotFound,
			Postcode: postcode,
			Message:  "postcode not found",
		}
	case body.Status != http.StatusOK:
		return spatial.Point{}, &GeocodingError{
			Type:     ErrorTypeService,
			Postcode: postcode,
			Message:  fmt.Sprintf("service status %d: %s", body.Status, quote(payload)),
		}
	}

	r := body.Result
	if r == nil || r.Latitude == nil || r.Longitude == nil || *r.Latitude == 0 || *r.Longitude == 0 {
		return spatial.Point{}, &GeocodingError{
			Type:     ErrorTypeMissingCoordinates,
			Postcode: postcode,
			Message:  "no lat/lng found in result",
		}
	}

	return spatial.Point{Lat: *r.Latitude, Lng: *r.Longitude}, nil
}
