package utils

import (
	"errors"
	"net/http"
)

// HTTPError is an error raised at the transport edge (bad query strings,
// malformed bodies) that already knows its status code. Domain errors are
// mapped by the handlers instead.
type HTTPError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(code int, message string) error {
	return &HTTPError{Code: code, Message: message}
}

func BadRequest(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}

// AsHTTPError unwraps err to an *HTTPError when there is one in its chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
