package doira

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnknownRegistrar matches errors for RA names absent from the router table.
var ErrUnknownRegistrar = errors.New("unknown registration agency")

// UnknownRegistrarError names the RA that could not be mapped to an adapter.
type UnknownRegistrarError struct {
	Name string
}

func (e *UnknownRegistrarError) Error() string {
	if e.Name == "" {
		return "unknown registration agency: DOI service reported no RA"
	}
	return fmt.Sprintf("unknown registration agency %q", e.Name)
}

func (e *UnknownRegistrarError) Is(target error) bool { return target == ErrUnknownRegistrar }

// APIError is returned by the DOI resolution service calls that cannot be
// normalized, because there is no adapter to normalize into yet.
// Callers should prefer IsNotFound to inspect it.
type APIError struct {
	operation  string
	statusCode int
	message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.operation, e.statusCode, e.message)
}

func newAPIError(operation string, statusCode int, message string) *APIError {
	return &APIError{operation: operation, statusCode: statusCode, message: message}
}

// IsNotFound reports whether err is an API error with HTTP 404 status.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.statusCode == http.StatusNotFound
}
