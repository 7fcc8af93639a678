package locator

import (
	"errors"
	"fmt"
)

// Resolution failures.
var (
	ErrElementNotFound  = errors.New("element not found")
	ErrAmbiguousElement = errors.New("ambiguous element")
	ErrStaleElement     = errors.New("stale element reference")
	ErrWrongCardinality = errors.New("list locator resolved as a single element")
	ErrNoSession        = errors.New("no browser session bound")
)

// ResolveError reports a failure to resolve, or to act on, the element a
// Locator describes.
type ResolveError struct {
	Locator Locator
	// Op is the element operation that failed, empty for lookups.
	Op string
	// Count is the number of matches for ErrAmbiguousElement.
	Count int
	Err   error
	// Cause is the driver error behind a classified failure, if any.
	Cause error
}

func (e *ResolveError) Error() string {
	msg := e.Err.Error()
	if e.Err == ErrAmbiguousElement {
		msg = fmt.Sprintf("%s: %d matches", msg, e.Count)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Locator, msg)
	}
	return fmt.Sprintf("%s: %s", e.Locator, msg)
}

// Unwrap returns the classified error and, when set, the driver error behind
// it.
func (e *ResolveError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// IsNotFound reports whether err is an ErrElementNotFound failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrElementNotFound) }

// IsAmbiguous reports whether err is an ErrAmbiguousElement failure.
func IsAmbiguous(err error) bool { return errors.Is(err, ErrAmbiguousElement) }

// IsStale reports whether err is an ErrStaleElement failure.
func IsStale(err error) bool { return errors.Is(err, ErrStaleElement) }
