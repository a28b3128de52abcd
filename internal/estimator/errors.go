package estimator

import (
	"errors"
	"fmt"
)

// ErrDestinationNotFound matches any DestinationNotFoundError via errors.Is.
var ErrDestinationNotFound = errors.New("destination not found")

// ErrInvalidRequest matches any InvalidRequestError via errors.Is.
var ErrInvalidRequest = errors.New("invalid estimate request")

// DestinationNotFoundError reports a destination key missing from the table.
type DestinationNotFoundError struct {
	Key string
}

func (e *DestinationNotFoundError) Error() string {
	return fmt.Sprintf("destination not found: %q", e.Key)
}

// Is lets errors.Is match ErrDestinationNotFound.
func (e *DestinationNotFoundError) Is(target error) bool {
	return target == ErrDestinationNotFound
}

// InvalidRequestError reports a request field outside its allowed values.
type InvalidRequestError struct {
	Field string
	Value string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// Is lets errors.Is match ErrInvalidRequest.
func (e *InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}
