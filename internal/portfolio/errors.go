package portfolio

import (
	"errors"
	"fmt"
)

// FetchError reports a document that could not be retrieved: a transport
// failure, an unreadable file, or a non-OK HTTP status.
type FetchError struct {
	Source string
	Status int // zero unless the server answered
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP error! status: %d", e.Source, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a document body that is not a JSON (or YAML) object of
// the expected shape.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errNotObject = errors.New("document is not a JSON object")
