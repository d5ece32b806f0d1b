package document

import (
	"errors"
	"fmt"
)

// ErrStructure matches every *StructuralError via errors.Is.
var ErrStructure = errors.New("document: structural validation failed")

// StructuralError reports a malformed or incomplete document.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type StructuralError struct {
	Path   string
	Line   int
	Reason string
	cause  error
}

// NewStructuralError builds a StructuralError positioned at n.
func NewStructuralError(n *Node, reason string, cause error) *StructuralError {
	err := &StructuralError{Reason: reason, cause: cause}
	if n != nil {
		err.Path = n.Path()
		err.Line = n.Line
	}
	return err
}

// Errorf builds a StructuralError positioned at n with a formatted reason.
func Errorf(n *Node, format string, args ...any) *StructuralError {
	return NewStructuralError(n, fmt.Sprintf(format, args...), nil)
}

func (e *StructuralError) Error() string {
	msg := "document: " + e.Path
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	msg += ": " + e.Reason
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *StructuralError) Unwrap() error { return e.cause }

func (e *StructuralError) Is(target error) bool { return target == ErrStructure }
