package ledger

import (
	"errors"
	"fmt"
)

// ErrNotConfigured matches every ConfigurationError.
var ErrNotConfigured = errors.New("ledger: not configured")

// ConfigurationError reports that a required identifier is missing, so no
// remote operation can run. It is not transient.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ledger: %s is not configured", e.Field)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNotConfigured
}

// QueryError wraps any failure to read from the ledger, timeouts included.
type QueryError struct {
	Owner string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("ledger query: %v", e.Err)
	}
	return fmt.Sprintf("ledger query for %s: %v", e.Owner, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// RPCError is a JSON-RPC error object returned by the fullnode.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// HTTPError is a non-2xx response that survived retries.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}
