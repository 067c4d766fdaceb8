package radarconfig

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfiguration marks input that breaks the radar's contract, such
	// as an empty ring list or duplicate labels.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidGeometry marks numeric input that would otherwise turn into NaN
	// coordinates.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Errorf(kind error, msg string, v ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(msg, v...)}
}

// ValidationError collects every problem found in a config so they can be
// fixed in one go.
type ValidationError struct {
	Errors []error
}

func (ve *ValidationError) Error() string {
	msgs := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

func (ve *ValidationError) Is(target error) bool {
	for _, err := range ve.Errors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (ve *ValidationError) errorf(kind error, msg string, v ...interface{}) {
	ve.Errors = append(ve.Errors, Errorf(kind, msg, v...))
}

func (ve *ValidationError) orNil() error {
	if len(ve.Errors) == 0 {
		return nil
	}
	return ve
}
