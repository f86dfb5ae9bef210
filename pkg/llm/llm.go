// Package llm defines the language-model capabilities workflow nodes
// depend on: a one-shot Completer and a tool-using Agent.
//
// Implementations live elsewhere; nodes receive them through their
// constructors so tests can substitute the scripted fakes in this package.
package llm

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Completer produces one model reply for a prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Agent runs a multi-step, tool-augmented task and returns its final
// textual answer. The tool set is fixed when the agent is built.
type Agent interface {
	Run(ctx context.Context, task string) (string, error)
}

// Request is a single completion request.
type Request struct {
	Messages []*schema.Message

	// Output constrains the reply to JSON matching a schema.
	// Nil means free text.
	Output *OutputSchema
}

// OutputSchema names a structured reply shape. Shape is a pointer to a
// zero value of the Go type the reply decodes into; implementations
// derive the JSON schema from it.
type OutputSchema struct {
	Name        string
	Description string
	Shape       any
}

// Response is a completion reply.
type Response struct {
	Content string
	Usage   *schema.TokenUsage
}
