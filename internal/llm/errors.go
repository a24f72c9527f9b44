package llm

import "fmt"

// APIError is a failed provider call.
type APIError struct {
	Provider   Provider
	StatusCode int
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Cause
}
