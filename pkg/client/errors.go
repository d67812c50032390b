package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrNetwork matches fetch failures caused by transport errors or a
	// non-success HTTP status.
	ErrNetwork = errors.New("network error")

	// ErrInvalidData matches fetch failures where the body did not have
	// the page shape.
	ErrInvalidData = errors.New("invalid data")

	// ErrInvalidRequest is returned for requests that cannot be issued.
	ErrInvalidRequest = errors.New("invalid request")
)

// ErrorClass represents a classification of fetch failures.
type ErrorClass string

const (
	// ErrorClassNetwork represents transport errors and non-2xx responses.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassMalformed represents responses that fail shape validation.
	ErrorClassMalformed ErrorClass = "malformed"
)

// FetchError describes a failed page fetch.
type FetchError struct {
	Class      ErrorClass
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("fetch %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the class sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Class == ErrorClassNetwork
	case ErrInvalidData:
		return e.Class == ErrorClassMalformed
	}
	return false
}

// ClassOf returns the class of err, or "" if err is not a *FetchError.
func ClassOf(err error) ErrorClass {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Class
	}
	return ""
}
