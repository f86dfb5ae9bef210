package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/wjs2063/tripgraph/internal/logging"
	"github.com/wjs2063/tripgraph/pkg/llm"
)

// TravelGuide answers travel questions with a single completion: an
// itinerary, local tips, an estimated cost and a safety guide. It uses no
// tools and no graph.
type TravelGuide struct {
	completer llm.Completer
	prompts   *Prompts
	logger    *slog.Logger
}

// NewTravelGuide creates a guide over completer. A nil logger uses slog.Default.
func NewTravelGuide(completer llm.Completer, prompts *Prompts, logger *slog.Logger) (*TravelGuide, error) {
	switch {
	case completer == nil:
		return nil, errors.New("travel guide: completer is required")
	case prompts == nil:
		return nil, errors.New("travel guide: prompts are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TravelGuide{completer: completer, prompts: prompts, logger: logger}, nil
}

// Answer returns the guide's reply to query.
func (g *TravelGuide) Answer(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyInput
	}

	msgs, err := g.prompts.Render(ctx, PromptTravelGuide, map[string]any{"query": query})
	if err != nil {
		return "", err
	}
	resp, err := g.completer.Complete(ctx, llm.Request{Messages: msgs})
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	logging.FromContext(ctx, g.logger).Debug("travel guide answered", slog.Int("chars", len(answer)))
	return answer, nil
}
