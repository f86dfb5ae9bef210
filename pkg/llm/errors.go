package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrCapability matches every *CapabilityError under errors.Is.
	ErrCapability = errors.New("capability failed")

	// ErrMalformedOutput marks a structured reply that did not decode.
	ErrMalformedOutput = errors.New("malformed structured output")
)

// CapabilityError reports a failed model or agent call.
type CapabilityError struct {
	// Op is the call that failed: "complete", "agent" or "decode".
	Op string
	// Timeout is true when the call ran out of time.
	Timeout bool
	Err     error
}

func (e *CapabilityError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("llm %s: timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

func (e *CapabilityError) Is(target error) bool { return target == ErrCapability }
