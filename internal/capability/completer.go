// Package capability implements the llm capabilities on top of eino and
// any OpenAI-compatible chat completion endpoint.
package capability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	openai3 "github.com/cloudwego/eino-ext/libs/acl/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/getkin/kin-openapi/openapi3gen"

	"github.com/wjs2063/tripgraph/internal/config"
	"github.com/wjs2063/tripgraph/pkg/llm"
)

// ModelFactory builds a chat model from an eino OpenAI config.
type ModelFactory func(ctx context.Context, cfg *openai.ChatModelConfig) (model.ToolCallingChatModel, error)

// NewOpenAIModel is the default ModelFactory.
func NewOpenAIModel(ctx context.Context, cfg *openai.ChatModelConfig) (model.ToolCallingChatModel, error) {
	m, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Completer answers llm.Requests with an OpenAI-compatible model. Requests
// carrying an output schema go to a model configured with a JSON-schema
// response format; one such model is built per schema name and reused.
type Completer struct {
	cfg     config.ModelConfig
	factory ModelFactory
	logger  *slog.Logger

	base model.ToolCallingChatModel

	mu         sync.Mutex
	structured map[string]model.ToolCallingChatModel
}

// CompleterOption configures a Completer.
type CompleterOption func(*Completer)

// WithModelFactory replaces the model constructor.
func WithModelFactory(f ModelFactory) CompleterOption {
	return func(c *Completer) { c.factory = f }
}

// WithLogger sets the logger for call diagnostics.
func WithLogger(logger *slog.Logger) CompleterOption {
	return func(c *Completer) { c.logger = logger }
}

// NewCompleter builds the free-text model eagerly so configuration errors
// surface at startup.
func NewCompleter(ctx context.Context, cfg config.ModelConfig, opts ...CompleterOption) (*Completer, error) {
	c := &Completer{
		cfg:        cfg,
		factory:    NewOpenAIModel,
		logger:     slog.Default(),
		structured: make(map[string]model.ToolCallingChatModel),
	}
	for _, opt := range opts {
		opt(c)
	}

	base, err := c.factory(ctx, c.modelConfig())
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	c.base = base
	return c, nil
}

// Model returns the free-text chat model, for building agents on the same
// endpoint.
func (c *Completer) Model() model.ToolCallingChatModel {
	return c.base
}

// Complete sends one request under the configured model timeout.
func (c *Completer) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m := c.base
	if req.Output != nil {
		var err error
		if m, err = c.structuredModel(ctx, req.Output); err != nil {
			return nil, &llm.CapabilityError{Op: "complete", Err: err}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	msg, err := m.Generate(callCtx, req.Messages)
	if err != nil {
		timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
		c.logger.WarnContext(ctx, "completion failed",
			slog.String("model", c.cfg.ModelID),
			slog.Bool("timeout", timedOut),
			slog.String("error", err.Error()),
		)
		return nil, &llm.CapabilityError{Op: "complete", Timeout: timedOut, Err: err}
	}

	resp := &llm.Response{Content: msg.Content}
	if msg.ResponseMeta != nil {
		resp.Usage = msg.ResponseMeta.Usage
	}
	c.logger.DebugContext(ctx, "completion finished",
		slog.String("model", c.cfg.ModelID),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return resp, nil
}

func (c *Completer) structuredModel(ctx context.Context, out *llm.OutputSchema) (model.ToolCallingChatModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.structured[out.Name]; ok {
		return m, nil
	}

	ref, err := openapi3gen.NewSchemaRefForValue(out.Shape, nil)
	if err != nil {
		return nil, fmt.Errorf("derive schema %s: %w", out.Name, err)
	}

	mc := c.modelConfig()
	mc.ResponseFormat = &openai3.ChatCompletionResponseFormat{
		Type: openai3.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai3.ChatCompletionResponseFormatJSONSchema{
			Name:        out.Name,
			Description: out.Description,
			Strict:      false,
			Schema:      ref.Value,
		},
	}

	m, err := c.factory(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", out.Name, err)
	}
	c.structured[out.Name] = m
	return m, nil
}

func (c *Completer) modelConfig() *openai.ChatModelConfig {
	mc := &openai.ChatModelConfig{
		Model:   c.cfg.ModelID,
		BaseURL: c.cfg.BaseURL,
		APIKey:  c.cfg.APIKey,
	}
	if c.cfg.Temperature > 0 {
		t := c.cfg.Temperature
		mc.Temperature = &t
	}
	return mc
}
