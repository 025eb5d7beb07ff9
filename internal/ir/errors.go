package ir

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorCode categorizes resolution errors.
type ErrorCode string

const (
	// ErrCodeKeyNotFound indicates an address component is missing from a document.
	ErrCodeKeyNotFound ErrorCode = "KEY_NOT_FOUND"

	// ErrCodeDataNotFound indicates a non-optional value was absent at every level.
	ErrCodeDataNotFound ErrorCode = "DATA_NOT_FOUND"

	// ErrCodeEmptyCursorAccess indicates a read from a zero cursor.
	ErrCodeEmptyCursorAccess ErrorCode = "EMPTY_CURSOR_ACCESS"

	// ErrCodeIncompatibleMerge indicates two values of incompatible kinds were merged.
	ErrCodeIncompatibleMerge ErrorCode = "INCOMPATIBLE_MERGE"

	// ErrCodeCannotMergeIntoNonMapping indicates a keyed merge into a scalar or sequence.
	ErrCodeCannotMergeIntoNonMapping ErrorCode = "CANNOT_MERGE_INTO_NON_MAPPING"

	// ErrCodeParse indicates document content could not be parsed.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeIO indicates a document could not be opened or read.
	ErrCodeIO ErrorCode = "IO_ERROR"

	// ErrCodeTypeMismatch indicates a present value does not have the declared scalar kind.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Error is the single error type surfaced by loading, merging and resolution.
//
// Error includes structured fields for diagnostics:
//   - Key is set for KEY_NOT_FOUND and CANNOT_MERGE_INTO_NON_MAPPING
//   - Path is the document path or field path where the error occurred
//   - Dst and Src carry both merge operands for INCOMPATIBLE_MERGE
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Key is the missing or target key, if any.
	Key string

	// Path locates the error (a file path, or a dotted field path).
	Path string

	// Dst and Src are the merge operands (merge errors only).
	Dst Value
	Src Value

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Path != "" {
		fmt.Fprintf(&b, " (at %s)", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsKeyNotFound returns true if the error is a missing-key error.
func IsKeyNotFound(err error) bool {
	return CodeOf(err) == ErrCodeKeyNotFound
}

// IsDataNotFound returns true if the error is a missing-data error.
func IsDataNotFound(err error) bool {
	return CodeOf(err) == ErrCodeDataNotFound
}

// IsNotFound returns true if err reports a document that does not exist.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeIO && errors.Is(err, fs.ErrNotExist)
}

// IsAbsence returns true for errors that only mean "no data here":
// a missing document or a missing key.
func IsAbsence(err error) bool {
	return IsNotFound(err) || IsKeyNotFound(err)
}

// IsReadError returns true for parse and I/O failures other than absence.
func IsReadError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeParse:
		return true
	case ErrCodeIO:
		return !IsNotFound(err)
	}
	return false
}

// NewKeyNotFoundError creates an Error for a missing address component.
func NewKeyNotFoundError(key string) *Error {
	return &Error{
		Code:    ErrCodeKeyNotFound,
		Message: fmt.Sprintf("key %q not found", key),
		Key:     key,
	}
}

// NewDataNotFoundError creates an Error for a non-optional value absent at every level.
func NewDataNotFoundError(path []string) *Error {
	return &Error{
		Code:    ErrCodeDataNotFound,
		Message: "data not found",
		Path:    strings.Join(path, "."),
	}
}

// NewEmptyCursorError creates an Error for a read from a zero cursor.
func NewEmptyCursorError() *Error {
	return &Error{
		Code:    ErrCodeEmptyCursorAccess,
		Message: "attempted to read data from an empty cursor",
	}
}

// NewIncompatibleMergeError creates an Error carrying both merge operands.
func NewIncompatibleMergeError(dst, src Value) *Error {
	return &Error{
		Code:    ErrCodeIncompatibleMerge,
		Message: fmt.Sprintf("cannot merge %s into %s", KindOf(src), KindOf(dst)),
		Dst:     Clone(dst),
		Src:     Clone(src),
	}
}

// NewCannotMergeIntoNonMappingError creates an Error for a keyed merge into a non-mapping.
func NewCannotMergeIntoNonMappingError(dst Value, key string) *Error {
	return &Error{
		Code:    ErrCodeCannotMergeIntoNonMapping,
		Message: fmt.Sprintf("cannot merge key %q into %s", key, KindOf(dst)),
		Key:     key,
		Dst:     Clone(dst),
	}
}

// NewParseError creates an Error for unparseable document content.
func NewParseError(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeParse,
		Message: "document is not valid",
		Path:    path,
		Err:     err,
	}
}

// NewIOError creates an Error for an unreadable document.
func NewIOError(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeIO,
		Message: "document could not be read",
		Path:    path,
		Err:     err,
	}
}

// NewTypeMismatchError creates an Error for a value of the wrong kind.
func NewTypeMismatchError(path []string, want string, got Value) *Error {
	return &Error{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("expected %s, found %s", want, KindOf(got)),
		Path:    strings.Join(path, "."),
		Src:     Clone(got),
	}
}
