package client

import (
	"errors"
	"fmt"
)

// NetworkError reports that the backend could not be reached or its
// response could not be read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BackendError reports a response that did not carry status "success".
type BackendError struct {
	Op         string
	StatusCode int
	Status     string
	Message    string
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request was not successful"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend error (%d): %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: backend error: %s", e.Op, msg)
}

// IsNetwork reports whether err is or wraps a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsBackend reports whether err is or wraps a BackendError.
func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// IsNotFound reports whether the backend answered 404.
func IsNotFound(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.StatusCode == 404
}
