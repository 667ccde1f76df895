package doira

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Result is a normalized RA response: the decoded JSON document on success,
// or one of Failure, Note, Unsupported.
type Result any

// Failure is the normalized shape of a remote failure. Status is 0 when no
// HTTP response was received.
type Failure struct {
	Status  int    `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// Note is an informational payload returned instead of a fetched document.
type Note struct {
	Note string `json:"note" yaml:"note"`
}

// Unsupported reports that an agency lacks a capability.
type Unsupported struct {
	Status    int    `json:"status" yaml:"status"`
	Message   string `json:"message" yaml:"message"`
	Operation string `json:"operation" yaml:"operation"`
	Agency    string `json:"agency" yaml:"agency"`
}

func unsupported(agency, operation string) Unsupported {
	return Unsupported{
		Status:    http.StatusNotImplemented,
		Message:   fmt.Sprintf("%s not supported by %s", operation, agency),
		Operation: operation,
		Agency:    agency,
	}
}

// IsFailure reports whether r is a Failure payload.
func IsFailure(r Result) bool {
	_, ok := r.(Failure)
	return ok
}

// IsUnsupported reports whether r is an Unsupported payload.
func IsUnsupported(r Result) bool {
	_, ok := r.(Unsupported)
	return ok
}

// Normalize turns the outcome of an HTTP round trip into a Result. It
// consumes and closes the response body. A 200 response is decoded as JSON;
// anything else, including a transport error or an undecodable body,
// becomes a Failure.
func Normalize(resp *http.Response, err error) Result {
	if err != nil {
		return Failure{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusOK {
		if readErr != nil {
			return Failure{Status: resp.StatusCode, Message: readErr.Error()}
		}
		doc, decErr := decodeJSON(body)
		if decErr != nil {
			return Failure{Status: resp.StatusCode, Message: decErr.Error()}
		}
		return doc
	}

	msg := strings.TrimSpace(string(body))
	switch {
	case readErr != nil:
		msg = readErr.Error()
	case msg == "":
		msg = http.StatusText(resp.StatusCode)
	}
	return Failure{Status: resp.StatusCode, Message: msg}
}

func decodeJSON(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			return nil, fmt.Errorf("decode response: %w (offset %d)", err, syn.Offset)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}
