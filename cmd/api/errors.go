package api

import (
	"errors"
	"fmt"
)

// Error is a transport-level failure: the request never produced a decodable
// backend envelope (network failure, timeout, proxy page, malformed body).
// Application-level failures come back as a response with Success=false and
// a nil error instead.
type Error struct {
	Op          string
	StatusCode  int
	ServerError string
	Err         error
}

func (e *Error) Error() string {
	msg := e.ServerError
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorMessage returns the most user-meaningful text for err: the server's
// own message when it sent one, otherwise the underlying error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.ServerError != "" {
			return apiErr.ServerError
		}
		if apiErr.Err != nil {
			return apiErr.Err.Error()
		}
	}
	return err.Error()
}

// IsUnreachable reports whether err is a transport failure that never got
// an HTTP status back.
func IsUnreachable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == 0
}
