package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

// InvalidInput is a shorthand for validation failures that have no underlying cause.
func InvalidInput(operation, message string) error {
	return WrapError(ErrInvalidInput, operation, errors.New(message))
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
