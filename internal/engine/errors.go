package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/confql/internal/ir"
)

// ErrInvalidAddress is returned for an address component that cannot name
// a document: empty, "." or "..", or containing a path separator.
var ErrInvalidAddress = errors.New("invalid address")

// QueryError wraps a resolution failure with the query it belongs to.
//
// The cause is usually an *ir.Error, so ir.CodeOf and the ir.Is* helpers
// classify a QueryError directly.
type QueryError struct {
	// QueryID identifies the query in logs.
	QueryID string

	// Address is the requested address.
	Address []string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("%v (query=%s, address=%s)", e.Err, e.QueryID, dotted(e.Address))
}

// Unwrap returns the underlying cause.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsInvalidAddress returns true if err reports a malformed address.
// Uses errors.Is to handle wrapped errors.
func IsInvalidAddress(err error) bool {
	return errors.Is(err, ErrInvalidAddress)
}

// ParseAddress splits a dotted address ("things.widget.size") into its
// components. The empty string is the empty address.
func ParseAddress(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	address := strings.Split(s, ".")
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	return address, nil
}

func validateAddress(address []string) error {
	for _, elem := range address {
		if elem == "" || elem == "." || elem == ".." || strings.ContainsAny(elem, `/\`) {
			return fmt.Errorf("%w: component %q", ErrInvalidAddress, elem)
		}
	}
	return nil
}

// withPath prefixes the query path onto a merge error's key path.
func withPath(err error, path []string) error {
	var e *ir.Error
	if len(path) == 0 || !errors.As(err, &e) {
		return err
	}
	if e.Path == "" {
		e.Path = dotted(path)
	} else {
		e.Path = dotted(path) + "." + e.Path
	}
	return err
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func dotted(path []string) string {
	return strings.Join(path, ".")
}
