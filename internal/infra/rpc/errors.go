package rpc

import (
	"errors"
	"fmt"
)

// TransportError wraps any failure to obtain a usable response from the
// ledger endpoint: network errors, HTTP errors, rate limiting, and
// malformed responses. Callers decide the retry policy; the client itself
// never retries.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
