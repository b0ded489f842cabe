package api

import (
	"fmt"
)

// APIError describes a non-2xx response from the rate service
type APIError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rate service returned status %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// ParseError describes a response body that could not be parsed as XML
type ParseError struct {
	URL  string
	Body string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s as XML: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
