// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package postcodes

import (
	"errors"
	"fmt"
	"net/http"
)

// GeocodingError represents a failure resolving a postcode.
type GeocodingError struct {
	Type     ErrorType
	Postcode string
	Message  string
	Err      error
}

// ErrorType classifies geocoding failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeTransport the service could not be reached or answered with a non-2xx status.
	ErrorTypeTransport
	// ErrorTypeNotFound the service does not know the postcode.
	ErrorTypeNotFound
	// ErrorTypeService the service answered with a status other than 200 in its payload.
	ErrorTypeService
	// ErrorTypeMalformedResponse the payload could not be decoded.
	ErrorTypeMalformedResponse
	// ErrorTypeMissingCoordinates the result carries no usable latitude/longitude.
	ErrorTypeMissingCoordinates
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransport:
		return "transport-error"
	case ErrorTypeNotFound:
		return "not-found"
	case ErrorTypeService:
		return "service-error"
	case ErrorTypeMalformedResponse:
		return "malformed-response"
	case ErrorTypeMissingCoordinates:
		return "missing-coordinates"
	default:
		return "unknown"
	}
}

func (e *GeocodingError) Error() string {
	msg := e.Message
	if e.Postcode != "" {
		msg = e.Postcode + ": " + msg
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func hasType(err error, t ErrorType) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == t
	}

	return false
}

// IsNotFoundError checks whether the postcode is unknown to the service.
func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsTransportError checks whether the service could not be reached.
func IsTransportError(err error) bool {
	return hasType(err, ErrorTypeTransport)
}

// IsMissingCoordinatesError checks whether the service answered without a location.
func IsMissingCoordinatesError(err error) bool {
	return hasType(err, ErrorTypeMissingCoordinates)
}

// ClassifyHTTPError converts a non-2xx HTTP status into a GeocodingError,
// quoting the response payload when there is one.
func ClassifyHTTPError(postcode string, statusCode int, payload []byte) *GeocodingError {
	if statusCode == http.StatusNotFound {
		return &GeocodingError{
			Type:     ErrorTypeNotFound,
			Postcode: postcode,
			Message:  "postcode not found",
		}
	}

	message := fmt.Sprintf("HTTP error %d", statusCode)
	if detail := quote(payload); detail != "" {
		message += ": " + detail
	}

	return &GeocodingError{
		Type:     ErrorTypeTransport,
		Postcode: postcode,
		Message:  message,
	}
}
