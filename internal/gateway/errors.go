package gateway

import (
	"errors"
	"fmt"
	"reflect"
)

// TransportError is a failure below the GraphQL layer: a non-200 status,
// a network error, a timeout or a response body that could not be decoded.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: transport failure", e.Op)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a well-formed GraphQL response whose envelope carries errors.
type APIError struct {
	Op      string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: graphql error: %s", e.Op, e.Message)
}

// graphqlPackage is where the GraphQL client declares the unexported type it
// returns for a response envelope's errors list.
const graphqlPackage = "github.com/shurcooL/graphql"

// classifyError maps an error returned by the GraphQL client onto the
// TransportError / APIError taxonomy. Only the envelope's errors list is an
// APIError; status, network, timeout and decode failures are transport errors.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return &TransportError{Op: op, StatusCode: transportErr.StatusCode, Body: transportErr.Body, Err: transportErr.Err}
	}
	if isEnvelopeError(err) {
		return &APIError{Op: op, Message: err.Error()}
	}
	return &TransportError{Op: op, Err: err}
}

func isEnvelopeError(err error) bool {
	t := reflect.TypeOf(err)
	return t.Kind() == reflect.Slice && t.PkgPath() == graphqlPackage && t.Name() == "errors"
}

func outcomeOf(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &apiErr):
		return "api"
	default:
		return "transport"
	}
}
