package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the geocoder had no match for the query.
	ErrNotFound = errors.New("location not found")

	// ErrAllSourcesUnavailable means every source in a fallback chain failed.
	ErrAllSourcesUnavailable = errors.New("all sources unavailable")

	// ErrNoResults means a discovery query returned nothing, even after relaxing filters.
	ErrNoResults = errors.New("no results")

	// ErrNoDisplayableResults means results came back but none could be shown.
	ErrNoDisplayableResults = errors.New("no displayable results")
)

// Cause classifies why a single upstream call failed.
type Cause string

const (
	// CauseNetwork covers transport errors, timeouts and non-2xx statuses.
	CauseNetwork Cause = "network"
	// CauseParse covers malformed bodies and missing fields.
	CauseParse Cause = "parse"
)

// FetchError is a transport or shape failure on one upstream call.
type FetchError struct {
	Service string
	Cause   Cause
	Err     error
}

// NetworkError wraps err as a transport failure of service.
func NetworkError(service string, err error) *FetchError {
	return &FetchError{Service: service, Cause: CauseNetwork, Err: err}
}

// ParseError wraps err as a shape failure of service.
func ParseError(service string, err error) *FetchError {
	return &FetchError{Service: service, Cause: CauseParse, Err: err}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s error: %v", e.Service, e.Cause, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UpstreamError is an error the upstream reported in-band in its payload.
type UpstreamError struct {
	Service string
	Reason  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s reported: %s", e.Service, e.Reason)
}
