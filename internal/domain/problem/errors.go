package problem

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput           = errors.New("empty problem input")
	ErrMissingCharacter     = errors.New("no character position found")
	ErrInvalidBallSize      = errors.New("invalid ball size")
	ErrConflictingCharacter = errors.New("conflicting character positions")
)

// DeclarationError ties a fatal parse failure to the declaration text that
// caused it. Offset is the byte offset of the declaration, or -1 when the
// failure is about something missing.
type DeclarationError struct {
	Err         error
	Declaration string
	Offset      int
}

func (e *DeclarationError) Error() string {
	if e.Declaration == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v in %s (offset %d)", e.Err, e.Declaration, e.Offset)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

type BallSizeError struct {
	Ball  string
	Value string
}

func (e *BallSizeError) Error() string {
	return fmt.Sprintf("%s %s for %s", ErrInvalidBallSize.Error(), e.Value, e.Ball)
}

func (e *BallSizeError) Unwrap() error {
	return ErrInvalidBallSize
}
