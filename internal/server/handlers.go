package server

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/wjs2063/tripgraph/internal/tools"
	"github.com/wjs2063/tripgraph/internal/workflow"
)

const contentTypeJSON = "application/json; charset=utf-8"

type handlers struct {
	Deps
}

type chatQuery struct {
	Query          string `query:"query"`
	RecursionLimit int    `query:"recursion_limit"`
}

type invokeRequest struct {
	Workflow string `json:"workflow"`
	Input    string `json:"input"`
	MaxSteps int    `json:"max_steps"`
}

// chat runs Plan-and-Execute on the query string question.
func (h *handlers) chat(ctx context.Context, c *app.RequestContext) {
	var q chatQuery
	if err := c.BindAndValidate(&q); err != nil {
		badRequest(c, fmt.Sprintf("invalid query: %v", err))
		return
	}
	limit := q.RecursionLimit
	if limit == 0 {
		limit = h.DefaultRecursionLimit
	}
	if limit < 0 {
		badRequest(c, "recursion_limit must be positive")
		return
	}
	h.run(ctx, c, workflow.PlanAndExecute, q.Query, limit)
}

// invoke runs any registered workflow from a JSON body.
func (h *handlers) invoke(ctx context.Context, c *app.RequestContext) {
	var req invokeRequest
	if err := c.BindAndValidate(&req); err != nil {
		badRequest(c, fmt.Sprintf("invalid body: %v", err))
		return
	}
	if req.MaxSteps < 0 {
		badRequest(c, "max_steps must be positive")
		return
	}
	h.run(ctx, c, req.Workflow, req.Input, req.MaxSteps)
}

func (h *handlers) run(ctx context.Context, c *app.RequestContext, name, input string, maxSteps int) {
	logger := requestLogger(h.Logger, c)
	res, err := h.Workflows.Invoke(ctx, name, input, maxSteps)
	if err != nil {
		fail(c, logger, err)
		return
	}
	logger.Info("workflow answered",
		slog.String("workflow", res.Workflow),
		slog.String("run_id", res.RunID),
	)
	c.JSON(consts.StatusOK, res)
}

// trail lists the audit snapshots of one run.
func (h *handlers) trail(_ context.Context, c *app.RequestContext) {
	entries, err := h.Workflows.Trail(c.Param("run_id"))
	if err != nil {
		fail(c, requestLogger(h.Logger, c), err)
		return
	}
	if len(entries) == 0 {
		c.AbortWithStatusJSON(consts.StatusNotFound, ErrorBody{Message: "run not found", Code: CodeNotFound})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"run_id": c.Param("run_id"), "entries": entries})
}

func (h *handlers) geocode(ctx context.Context, c *app.RequestContext) {
	query := c.Query("query")
	if query == "" {
		badRequest(c, "query is required")
		return
	}
	count, err := intParam(c, "count", 10)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	page, err := intParam(c, "page", 1)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	raw, err := h.Map.Geocode(ctx, tools.GeocodeParams{
		Query:      query,
		Coordinate: c.Query("coordinate"),
		Filter:     c.Query("filter_type"),
		Count:      count,
		Page:       page,
	})
	if err != nil {
		fail(c, requestLogger(h.Logger, c), err)
		return
	}
	c.Data(consts.StatusOK, contentTypeJSON, raw)
}

func (h *handlers) reverseGeocode(ctx context.Context, c *app.RequestContext) {
	lat, err := floatParam(c, "lat")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	lng, err := floatParam(c, "lng")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	raw, err := h.Map.ReverseGeocode(ctx, lat, lng, c.DefaultQuery("orders", tools.DefaultReverseOrders))
	if err != nil {
		fail(c, requestLogger(h.Logger, c), err)
		return
	}
	c.Data(consts.StatusOK, contentTypeJSON, raw)
}

func (h *handlers) pedestrian(ctx context.Context, c *app.RequestContext) {
	var coords [4]float64
	for i, key := range []string{"start_lat", "start_lng", "end_lat", "end_lng"} {
		v, err := floatParam(c, key)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		coords[i] = v
	}
	option, err := intParam(c, "search_option", int(tools.RouteRecommended))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if !tools.RouteOption(option).Valid() {
		badRequest(c, "search_option must be one of 0, 4, 10, 30")
		return
	}
	raw, err := h.TMap.PedestrianRoute(ctx, tools.RouteRequest{
		Start:     tools.Coordinates{Lat: coords[0], Lng: coords[1]},
		End:       tools.Coordinates{Lat: coords[2], Lng: coords[3]},
		StartName: c.Query("start_name"),
		EndName:   c.Query("end_name"),
		Option:    tools.RouteOption(option),
		PassList:  c.Query("pass_list"),
	})
	if err != nil {
		fail(c, requestLogger(h.Logger, c), err)
		return
	}
	c.Data(consts.StatusOK, contentTypeJSON, raw)
}

func (h *handlers) wikiGlobal(ctx context.Context, c *app.RequestContext) {
	texts, err := h.Wikipedia.SearchGlobal(ctx, c.Param("query"))
	if err != nil {
		fail(c, requestLogger(h.Logger, c), err)
		return
	}
	c.JSON(consts.StatusOK, texts)
}

// recovered answers a handler panic with the internal error envelope.
func (h *handlers) recovered(_ context.Context, c *app.RequestContext, err interface{}, stack []byte) {
	requestLogger(h.Logger, c).Error("handler panicked",
		slog.Any("panic", err),
		slog.String("stack", string(stack)),
	)
	c.AbortWithStatusJSON(consts.StatusInternalServerError, errInternal)
}

func floatParam(c *app.RequestContext, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

func intParam(c *app.RequestContext, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}
