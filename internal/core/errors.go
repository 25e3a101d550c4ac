package core

import (
	"errors"
	"fmt"
)

var (
	ErrUndoUnavailable = errors.New("undo unavailable")
	ErrNothingToUndo   = fmt.Errorf("%w: no transactions to undo", ErrUndoUnavailable)
	ErrNotReversible   = fmt.Errorf("%w: cannot undo this transaction type", ErrUndoUnavailable)
)

// ParseError reports command text that could not be tokenized.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

// ValidationError reports a missing, malformed or out-of-range argument.
// Message is shown to the user as is.
type ValidationError struct {
	Command string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Command == "" {
		return e.Message
	}
	return e.Command + ": " + e.Message
}

// UpstreamError wraps a failure of the advice collaborator.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
