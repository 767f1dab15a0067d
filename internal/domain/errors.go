package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrNetwork classifies a source fetch that failed before a response arrived
	ErrNetwork = errors.New("network error")

	// ErrHTTPStatus classifies a source fetch that got a non-2xx response
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrGenerativeAPIFailure is returned when the generative API request fails
	ErrGenerativeAPIFailure = errors.New("generative API request failed")

	// ErrInvalidResponseFormat is returned when a generative response contains no JSON object
	ErrInvalidResponseFormat = errors.New("invalid response format from generative API")

	// ErrMalformedJSON is returned when the JSON object in a generative response does not parse
	ErrMalformedJSON = errors.New("malformed JSON in generative API response")

	// ErrProductNotIdentified is returned when the photo could not be matched to a product name
	ErrProductNotIdentified = errors.New("product could not be identified from image")

	// ErrImageUnavailable is returned when the product image cannot be decoded or downloaded
	ErrImageUnavailable = errors.New("product image unavailable")

	// ErrInvalidSource is returned when a source registry entry fails validation
	ErrInvalidSource = errors.New("invalid source definition")
)

// ResponseParseError keeps the raw generative response next to the parse
// failure so it can be logged. It matches ErrInvalidResponseFormat or
// ErrMalformedJSON through errors.Is.
type ResponseParseError struct {
	Kind  error
	Raw   string
	Cause error
}

func (e *ResponseParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
	}
	return e.Kind.Error()
}

func (e *ResponseParseError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}
