package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned when an authenticated call has no token.
	ErrNoSession = errors.New("not logged in")
	// ErrSessionExpired is returned after the server rejected the token. The
	// stored session has been cleared.
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// APIError carries a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}
