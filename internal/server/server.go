// Package server exposes the workflows and the lookup tools over HTTP.
package server

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/wjs2063/tripgraph/internal/tools"
	"github.com/wjs2063/tripgraph/internal/workflow"
)

// Workflows is the workflow service the API drives.
type Workflows interface {
	Invoke(ctx context.Context, name, input string, maxSteps int) (*workflow.Result, error)
	Trail(runID string) ([]workflow.TrailEntry, error)
}

// Deps are the handlers' collaborators. Nil tool clients leave their
// routes unregistered.
type Deps struct {
	Workflows Workflows
	Map       *tools.NaverMap
	TMap      *tools.TMap
	Wikipedia *tools.Wikipedia

	// Guide backs the agent card and message endpoint; nil leaves them out.
	Guide  Guide
	Logger *slog.Logger

	// DefaultRecursionLimit applies to /ai/chat without recursion_limit.
	DefaultRecursionLimit int
}

// New creates a Hertz server listening on addr with every route registered.
// Call Spin to serve.
func New(addr string, deps Deps) *server.Hertz {
	h := server.New(server.WithHostPorts(addr))
	Register(h, deps)
	return h
}

// Register installs middleware and routes on h.
func Register(h *server.Hertz, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.DefaultRecursionLimit <= 0 {
		deps.DefaultRecursionLimit = 20
	}
	hd := &handlers{Deps: deps}

	h.Use(
		traceID(deps.Logger),
		recovery.Recovery(recovery.WithRecoveryHandler(hd.recovered)),
	)

	h.GET("/healthz", func(_ context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	v1 := h.Group("/api/v1")

	ai := v1.Group("/ai")
	ai.POST("/chat", hd.chat)
	ai.POST("/invoke", hd.invoke)
	ai.GET("/runs/:run_id", hd.trail)

	if deps.Map != nil {
		naver := v1.Group("/naver")
		naver.POST("/geocode", hd.geocode)
		naver.POST("/reverse-geocode", hd.reverseGeocode)
	}
	if deps.TMap != nil {
		v1.POST("/sk/pedestrian", hd.pedestrian)
	}
	if deps.Wikipedia != nil {
		v1.GET("/wiki/global/:query", hd.wikiGlobal)
	}

	if deps.Guide != nil {
		h.GET(AgentCardPath, hd.agentCard)
		h.POST(GuidePath, hd.guideMessage)
	}
}
