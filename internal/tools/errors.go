package tools

import (
	"errors"
	"fmt"
)

// ErrExternalService matches every *ExternalServiceError under errors.Is.
var ErrExternalService = errors.New("external service failed")

// ExternalServiceError reports a failed upstream call. Status is the
// upstream HTTP status, 408 for a timeout or 500 for a transport or
// decoding failure.
type ExternalServiceError struct {
	Service string
	Status  int
	Detail  string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("[%s] %d: %s", e.Service, e.Status, e.Detail)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func (e *ExternalServiceError) Is(target error) bool { return target == ErrExternalService }

// Timeout reports whether the upstream call ran out of time.
func (e *ExternalServiceError) Timeout() bool { return e.Status == 408 }
