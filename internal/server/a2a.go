package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"github.com/wjs2063/tripgraph/internal/workflow"
)

// Agent-to-agent endpoints of the travel guide.
const (
	AgentCardPath = "/.well-known/agent.json"
	GuidePath     = "/a2a/travel"
)

// Guide answers a travel question in one shot.
type Guide interface {
	Answer(ctx context.Context, query string) (string, error)
}

// AgentCard describes the travel guide to other agents.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	URL                string            `json:"url"`
	Version            string            `json:"version"`
	DefaultInputModes  []string          `json:"defaultInputModes"`
	DefaultOutputModes []string          `json:"defaultOutputModes"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	Skills             []AgentSkill      `json:"skills"`
}

// AgentCapabilities lists optional protocol features.
type AgentCapabilities struct {
	Streaming bool `json:"streaming"`
}

// AgentSkill is one advertised skill.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Message is an A2A message with text parts only.
type Message struct {
	Kind      string `json:"kind"`
	MessageID string `json:"messageId"`
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
}

// Part is one text segment of a Message.
type Part struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// JSON-RPC 2.0 error codes.
const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcInternalError  = -32603
)

const methodMessageSend = "message/send"

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Method  string `json:"method"`
	Params  struct {
		Message Message `json:"message"`
	} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  *Message  `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

func travelCard(url string) AgentCard {
	return AgentCard{
		Name:               "TravelAgent",
		Description:        "Private travel guide that plans safe trips",
		URL:                url,
		Version:            "1.0.0",
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []AgentSkill{{
			ID:          "travel_agent",
			Name:        "Travel guide",
			Description: "Itinerary, local tips, estimated cost and a safety guide for a destination",
			Tags:        []string{"travel", "travel_safe_guard"},
		}},
	}
}

func (h *handlers) agentCard(_ context.Context, c *app.RequestContext) {
	scheme := string(c.URI().Scheme())
	if scheme == "" {
		scheme = "http"
	}
	c.JSON(consts.StatusOK, travelCard(scheme+"://"+string(c.Host())+GuidePath))
}

// guideMessage serves JSON-RPC message/send. Protocol errors are reported
// in the JSON-RPC envelope with status 200.
func (h *handlers) guideMessage(ctx context.Context, c *app.RequestContext) {
	var req rpcRequest
	if err := c.BindJSON(&req); err != nil {
		rpcFail(c, nil, rpcParseError, "parse error")
		return
	}
	if req.JSONRPC != "2.0" {
		rpcFail(c, req.ID, rpcInvalidRequest, "jsonrpc must be 2.0")
		return
	}
	if req.Method != methodMessageSend {
		rpcFail(c, req.ID, rpcMethodNotFound, "method not found: "+req.Method)
		return
	}

	var texts []string
	for _, p := range req.Params.Message.Parts {
		if p.Kind == "text" {
			texts = append(texts, p.Text)
		}
	}
	answer, err := h.Guide.Answer(ctx, strings.Join(texts, "\n"))
	switch {
	case errors.Is(err, workflow.ErrEmptyInput):
		rpcFail(c, req.ID, rpcInvalidParams, "message has no text")
		return
	case err != nil:
		requestLogger(h.Logger, c).Error("travel guide failed", slog.String("error", err.Error()))
		rpcFail(c, req.ID, rpcInternalError, "internal error")
		return
	}

	c.JSON(consts.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: &Message{
			Kind:      "message",
			MessageID: uuid.NewString(),
			Role:      "agent",
			Parts:     []Part{{Kind: "text", Text: answer}},
		},
	})
}

func rpcFail(c *app.RequestContext, id any, code int, message string) {
	c.JSON(consts.StatusOK, rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}
