package tip

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported matches every *UnsupportedOperationError.
	ErrUnsupported = errors.New("tip: unsupported operation")
	// ErrOutOfBounds matches every *BoundsError.
	ErrOutOfBounds = errors.New("tip: out of bounds")
)

// UnsupportedOperationError reports a capability a model permanently lacks.
type UnsupportedOperationError struct {
	Op      string
	Message string
}

// Unsupported builds an UnsupportedOperationError.
func Unsupported(op, message string) *UnsupportedOperationError {
	return &UnsupportedOperationError{Op: op, Message: message}
}

func (e *UnsupportedOperationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tip: %s is not supported", e.Op)
	}
	return fmt.Sprintf("tip: %s: %s", e.Op, e.Message)
}

func (e *UnsupportedOperationError) Is(target error) bool { return target == ErrUnsupported }

// BoundsError reports an index or buffer that does not fit the stored data.
type BoundsError struct {
	// What names the checked quantity, e.g. "taxon" or "buffer".
	What  string
	Index int
	Limit int
}

func (e *BoundsError) Error() string {
	if e.What == "buffer" {
		return fmt.Sprintf("tip: buffer of length %d is smaller than %d", e.Index, e.Limit)
	}
	return fmt.Sprintf("tip: %s %d out of range [0, %d)", e.What, e.Index, e.Limit)
}

func (e *BoundsError) Is(target error) bool { return target == ErrOutOfBounds }

// CheckTaxon returns a BoundsError unless 0 <= taxon < count.
func CheckTaxon(taxon, count int) error {
	if taxon < 0 || taxon >= count {
		return &BoundsError{What: "taxon", Index: taxon, Limit: count}
	}
	return nil
}

// CheckBuffer returns a BoundsError when a buffer of length have cannot hold need values.
func CheckBuffer(have, need int) error {
	if have < need {
		return &BoundsError{What: "buffer", Index: have, Limit: need}
	}
	return nil
}
