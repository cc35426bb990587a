package domain

import (
	"errors"
	"fmt"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// InsufficientSupplyError is returned when a reservation asks for more units
// than the token has left. Available is the remaining capacity, surfaced to
// the buyer.
type InsufficientSupplyError struct {
	Available int
}

func (e InsufficientSupplyError) Error() string {
	return fmt.Sprintf("only %d tokens available", e.Available)
}

// Is enables errors.Is matching on InsufficientSupplyError.
func (e InsufficientSupplyError) Is(target error) bool {
	_, ok := target.(InsufficientSupplyError)
	if ok {
		return true
	}
	_, ok = target.(*InsufficientSupplyError)
	return ok
}

// ErrInsufficientSupply is the sentinel error for exhausted token capacity.
var ErrInsufficientSupply = InsufficientSupplyError{}

// InvalidArgumentError represents a malformed or out-of-range input value.
type InvalidArgumentError struct {
	Reason string
}

func (e InvalidArgumentError) Error() string {
	if e.Reason == "" {
		return "invalid argument"
	}
	return e.Reason
}

// Is enables errors.Is matching on InvalidArgumentError.
func (e InvalidArgumentError) Is(target error) bool {
	_, ok := target.(InvalidArgumentError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidArgumentError)
	return ok
}

// ErrInvalidArgument is the sentinel error for enum/range violations.
var ErrInvalidArgument = InvalidArgumentError{}

var (
	// ErrAlreadyFunded is returned when a reservation targets a fully sold token.
	ErrAlreadyFunded = errors.New("token is already fully funded")
	// ErrUnauthenticated is returned when credentials are missing or invalid.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrEmailTaken is returned when a signup reuses a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrConflict is returned when a concurrent write race exhausts retries.
	ErrConflict = errors.New("conflicting concurrent write")
)
