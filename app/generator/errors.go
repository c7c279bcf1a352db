package generator

import "fmt"

// RateLimitError is returned when the completion service kept answering 429
// for the whole attempt budget.
type RateLimitError struct {
	Status   int
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit persisted after %d attempts (status %d)", e.Attempts, e.Status)
}

// NetworkError is returned when transport-level failures exhausted the
// attempt budget. The last failure is wrapped.
type NetworkError struct {
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error after %d attempts: %v", e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is returned for any non-200, non-429 response. These are not
// retried.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion API error %d: %s", e.Status, e.Body)
}
