package portfolio

import "errors"

// Outcome labels used when recording load attempts.
const (
	OutcomeOK         = "ok"
	OutcomeFetchError = "fetch_error"
	OutcomeParseError = "parse_error"
)

// Result is the outcome of Loader.Load: either a document or exactly one of
// *FetchError / *ParseError. Callers decide whether to fall back.
type Result struct {
	doc        *Document
	validation Validation
	err        error
}

// Loaded wraps a successfully decoded document.
func Loaded(doc *Document, v Validation) Result {
	return Result{doc: doc, validation: v}
}

// Failed wraps a load error. Errors that are neither a FetchError nor a
// ParseError are treated as fetch failures.
func Failed(source string, err error) Result {
	var fe *FetchError
	var pe *ParseError
	if !errors.As(err, &fe) && !errors.As(err, &pe) {
		err = &FetchError{Source: source, Err: err}
	}
	return Result{err: err}
}

func (r Result) Ok() bool { return r.err == nil && r.doc != nil }

func (r Result) Document() *Document { return r.doc }

func (r Result) Validation() Validation { return r.validation }

func (r Result) Err() error { return r.err }

func (r Result) IsFetchError() bool {
	var fe *FetchError
	return errors.As(r.err, &fe)
}

func (r Result) IsParseError() bool {
	var pe *ParseError
	return errors.As(r.err, &pe)
}

// Outcome returns one of the Outcome* labels.
func (r Result) Outcome() string {
	switch {
	case r.Ok():
		return OutcomeOK
	case r.IsParseError():
		return OutcomeParseError
	default:
		return OutcomeFetchError
	}
}
