package sparql

import "fmt"

// TransportError means no HTTP response was received at all.
type TransportError struct {
	Query string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sparql %s: transport: %v", e.Query, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError means the endpoint answered with a non-2xx status.
type StatusError struct {
	Query      string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sparql %s: unexpected status %s", e.Query, e.Status)
}
