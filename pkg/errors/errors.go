// Package errors provides the error types used across carprice.
//
// It is a thin layer over github.com/cockroachdb/errors: every constructor
// returns a value that works with errors.Is / errors.As from the standard
// library and carries a stack trace when formatted with %+v.
//
// Typed errors:
//
//   - NotFoundError: an input file or artifact does not exist
//   - ValidationError: a parameter or column failed validation
//   - RowError: a single input row could not be decoded
//   - ValueError: an argument has an unusable value
//   - DimensionError: matrix shapes disagree
//   - NotFittedError: an estimator was used before Fit
//   - ModelError: a failure inside an estimator, wrapping a sentinel
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors.
var (
	ErrEmptyData         = errors.New("empty data")
	ErrSingularMatrix    = errors.New("singular matrix")
	ErrNotImplemented    = errors.New("not implemented")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrLocked            = errors.New("resource is locked by another run")
)

// New returns an error with a stack trace.
func New(msg string) error {
	return errors.New(msg)
}

// Newf returns a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// Wrap annotates err with msg. It returns nil if err is nil.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

// Wrapf annotates err with a formatted message. It returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// NotFoundError reports a missing file.
type NotFoundError struct {
	Path string
	What string
}

// NewNotFoundError creates a NotFoundError for path. what names the kind of
// resource ("input file", "model artifact").
func NewNotFoundError(what, path string) error {
	return errors.WithStack(&NotFoundError{Path: path, What: what})
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("carprice: %s not found: %s", e.What, e.Path)
}

// ValidationError reports an invalid parameter, column or value.
type ValidationError struct {
	Param  string
	Reason string
	Value  interface{}
}

// NewValidationError creates a ValidationError.
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{Param: param, Reason: reason, Value: value})
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("carprice: invalid %s: %s (got %v)", e.Param, e.Reason, e.Value)
}

// RowError reports an input row that could not be decoded. Row is 1-based and
// counts data rows, not the header.
type RowError struct {
	Row    int
	Column string
	Reason string
}

// NewRowError creates a RowError.
func NewRowError(row int, column, reason string) error {
	return &RowError{Row: row, Column: column, Reason: reason}
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("carprice: row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("carprice: row %d: column %q: %s", e.Row, e.Column, e.Reason)
}

// ValueError reports an argument with an unusable value.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("carprice: %s: %s", e.Op, e.Message)
}

// DimensionError reports a shape mismatch along Axis.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("carprice: %s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

// Unwrap lets errors.Is match ErrDimensionMismatch.
func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// NotFittedError reports use of an estimator before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("carprice: %s: must call Fit before %s", e.ModelName, e.Method)
}

// ModelError reports a failure inside an estimator.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

// NewModelError creates a ModelError wrapping err.
func NewModelError(op, message string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Message: message, Err: err})
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("carprice: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("carprice: %s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Recover converts a panic in the calling function into an error stored in
// *errp. Use it as the first deferred call:
//
//	func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
//		defer errors.Recover(&err, "StandardScaler.Fit")
//		...
//	}
//
// gonum/mat reports shape problems by panicking, so estimators rely on this.
func Recover(errp *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok {
		*errp = errors.Wrapf(e, "%s: recovered from panic", op)
		return
	}
	*errp = errors.Newf("%s: recovered from panic: %v", op, r)
}
