package llm

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned by scripted fakes called more often than scripted.
var ErrScriptExhausted = errors.New("no scripted reply left")

// ScriptedCompleter replays canned replies in order and records requests.
// A reply may be a string or an error. Once the script runs out, the last
// reply repeats if Repeat is set, otherwise ErrScriptExhausted is returned.
type ScriptedCompleter struct {
	mu       sync.Mutex
	replies  []any
	Repeat   bool
	requests []Request
}

// NewScriptedCompleter creates a completer replaying replies.
func NewScriptedCompleter(replies ...any) *ScriptedCompleter {
	return &ScriptedCompleter{replies: replies}
}

func (s *ScriptedCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if err := ctx.Err(); err != nil {
		return nil, &CapabilityError{Op: "complete", Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
	}

	reply, err := next(&s.replies, s.Repeat)
	if err != nil {
		return nil, err
	}
	return &Response{Content: reply}, nil
}

// Requests returns every request received so far.
func (s *ScriptedCompleter) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// ScriptedAgent replays canned agent answers and records tasks.
type ScriptedAgent struct {
	mu      sync.Mutex
	replies []any
	Repeat  bool
	tasks   []string
}

// NewScriptedAgent creates an agent replaying replies (strings or errors).
func NewScriptedAgent(replies ...any) *ScriptedAgent {
	return &ScriptedAgent{replies: replies}
}

func (s *ScriptedAgent) Run(ctx context.Context, task string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, task)
	return next(&s.replies, s.Repeat)
}

// Tasks returns every task received so far, in call order.
func (s *ScriptedAgent) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tasks...)
}

func next(replies *[]any, repeat bool) (string, error) {
	if len(*replies) == 0 {
		return "", ErrScriptExhausted
	}

	reply := (*replies)[0]
	if len(*replies) > 1 || !repeat {
		*replies = (*replies)[1:]
	}

	switch r := reply.(type) {
	case error:
		return "", r
	case string:
		return r, nil
	default:
		return "", errors.New("scripted reply must be a string or an error")
	}
}
