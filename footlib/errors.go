package footlib

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	ErrFootprintShutdown = errors.New("footprint instance was shutdown")

	// ErrCircuitBreakerOpened is returned by HTTP client if too many
	// requests to a target have failed and we stopped to send them for
	// a while.
	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")

	// ErrCircuitBreakerIgnore is returned from a circuit breaker
	// callback if error should not be counted as a failure of a target.
	ErrCircuitBreakerIgnore = errors.New("this error is ignored by circuit breaker")
)

type jsonHTTPError struct {
	Error   string `json:"error"`
	Context string `json:"context,omitempty"`
}

type httpError struct {
	message    string
	err        error
	statusCode int
	verbose    bool
}

func (h *httpError) Message() string {
	if h == nil {
		return ""
	}

	return h.message
}

func (h *httpError) Err() string {
	if err := errors.Unwrap(h); err != nil {
		return err.Error()
	}

	return ""
}

func (h *httpError) StatusCode() int {
	if h != nil && h.statusCode != 0 {
		return h.statusCode
	}

	return http.StatusInternalServerError
}

func (h *httpError) Unwrap() error {
	if h == nil {
		return nil
	}

	return h.err
}

func (h *httpError) Error() string {
	switch {
	case h == nil:
		return ""
	case h.err != nil && h.message != "":
		return h.message + ": " + h.err.Error()
	case h.err != nil:
		return h.err.Error()
	}

	return h.message
}

// MarshalJSON hides a cause of the error unless error is verbose. We
// do not want to leak internal details in production.
func (h *httpError) MarshalJSON() ([]byte, error) {
	value := jsonHTTPError{
		Error: h.Message(),
	}

	if h.verbose {
		value.Context = h.Err()
	}

	return json.Marshal(&value)
}
