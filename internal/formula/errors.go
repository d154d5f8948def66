package formula

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax     = errors.New("formula syntax error")
	ErrEvaluation = errors.New("formula evaluation error")
)

// SyntaxError is returned when a formula cannot be parsed.
type SyntaxError struct {
	Position int // Rune offset in the formula, 0 based
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d: %s", ErrSyntax, e.Position, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// EvaluationError is returned when a valid formula cannot be evaluated
// with the given bindings.
type EvaluationError struct {
	Msg string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrEvaluation, e.Msg)
}

func (e *EvaluationError) Unwrap() error {
	return ErrEvaluation
}
