package client

import (
	"errors"
	"fmt"
)

var (
	// ErrServerNotRunning is returned when nothing listens on the server address
	ErrServerNotRunning = errors.New("server not running")

	// ErrNotFound is returned when 404 is returned from the server
	ErrNotFound = errors.New("404 not found")
)

// MutationError carries the error string of a failed mutation.
type MutationError struct {
	Path string
	Msg  string
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}
