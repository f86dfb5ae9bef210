package capability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/wjs2063/tripgraph/internal/config"
	"github.com/wjs2063/tripgraph/pkg/llm"
)

// DefaultSystemPrompt frames the tool agent for local search tasks.
const DefaultSystemPrompt = "You are a local travel assistant. Use the available tools to look up " +
	"places, coordinates, walking routes and background facts. Answer with the facts you found."

// Agent is an llm.Agent backed by an eino ReAct agent.
type Agent struct {
	react   *react.Agent
	timeout time.Duration
	logger  *slog.Logger
	handler callbacks.Handler
}

// AgentOption configures an Agent.
type AgentOption func(*agentSettings)

type agentSettings struct {
	system string
	logger *slog.Logger
}

// WithSystemPrompt overrides DefaultSystemPrompt.
func WithSystemPrompt(prompt string) AgentOption {
	return func(s *agentSettings) { s.system = prompt }
}

// WithAgentLogger sets the logger used for tool call diagnostics.
func WithAgentLogger(logger *slog.Logger) AgentOption {
	return func(s *agentSettings) { s.logger = logger }
}

// NewAgent builds a ReAct agent over chat with a fixed tool set.
func NewAgent(ctx context.Context, chat model.ToolCallingChatModel, tools []tool.BaseTool, cfg config.AgentConfig, opts ...AgentOption) (*Agent, error) {
	s := agentSettings{system: DefaultSystemPrompt, logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}

	system := schema.SystemMessage(s.system)
	r, err := react.NewAgent(ctx, &react.AgentConfig{
		MaxStep:          cfg.MaxStep,
		ToolCallingModel: chat,
		ToolsConfig:      compose.ToolsNodeConfig{Tools: tools},
		MessageModifier: func(_ context.Context, input []*schema.Message) []*schema.Message {
			return append([]*schema.Message{system}, input...)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create react agent: %w", err)
	}

	return &Agent{
		react:   r,
		timeout: cfg.Timeout,
		logger:  s.logger,
		handler: loggingHandler(s.logger),
	}, nil
}

// Run executes task under the agent timeout.
func (a *Agent) Run(ctx context.Context, task string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	msg, err := a.react.Generate(ctx,
		[]*schema.Message{schema.UserMessage(task)},
		agent.WithComposeOptions(compose.WithCallbacks(a.handler)),
	)
	if err != nil {
		return "", &llm.CapabilityError{
			Op:      "agent",
			Timeout: errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:     err,
		}
	}
	return msg.Content, nil
}

// loggingHandler reports tool and model calls made inside the agent loop.
func loggingHandler(logger *slog.Logger) callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
			logger.DebugContext(ctx, "agent component started",
				slog.String("component", string(info.Component)),
				slog.String("name", info.Name),
			)
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
			logger.DebugContext(ctx, "agent component finished",
				slog.String("component", string(info.Component)),
				slog.String("name", info.Name),
			)
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			logger.WarnContext(ctx, "agent component failed",
				slog.String("component", string(info.Component)),
				slog.String("name", info.Name),
				slog.String("error", err.Error()),
			)
			return ctx
		}).
		Build()
}
