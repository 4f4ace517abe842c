package synology

import (
	"errors"
	"fmt"
)

// ErrAuthFailed indicates invalid credentials or a rejected session.
// Never retried.
var ErrAuthFailed = errors.New("authentication failed")

// APIError is a non-success response envelope from the remote API. The
// code is opaque to callers beyond the auth classification below.
type APIError struct {
	Code int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: code %d", e.Code)
}

// IsAuthFailure reports whether the code denotes a credential or
// session failure. 400-407 are login failures, 105-107 and 119 are
// session/permission failures.
func (e *APIError) IsAuthFailure() bool {
	switch e.Code {
	case 105, 106, 107, 119:
		return true
	}
	return e.Code >= 400 && e.Code <= 407
}

// IsAuthError reports whether err is an authentication failure of any
// shape (sentinel or coded).
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthFailed) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsAuthFailure()
}
