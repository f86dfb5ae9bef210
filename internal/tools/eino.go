package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// Tool names as the model sees them.
const (
	ToolSearchLocal  = "search_naver_local"
	ToolLatLng       = "get_lat_lng"
	ToolAddress      = "get_address"
	ToolWikipedia    = "search_wikipedia"
	ToolWalkingRoute = "get_walking_route"
)

// Set groups the service clients an agent may call. Nil members are
// left out of the tool list.
type Set struct {
	Search    *NaverSearch
	Map       *NaverMap
	TMap      *TMap
	Wikipedia *Wikipedia
	Logger    *slog.Logger
}

// EinoTools adapts the set to eino tools.
func (s Set) EinoTools() []tool.BaseTool {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var out []tool.BaseTool
	if s.Search != nil {
		out = append(out, &searchLocalTool{search: s.Search, logger: logger})
	}
	if s.Map != nil {
		out = append(out, &latLngTool{m: s.Map, logger: logger}, &addressTool{m: s.Map, logger: logger})
	}
	if s.Wikipedia != nil {
		out = append(out, &wikipediaTool{wiki: s.Wikipedia, logger: logger})
	}
	if s.TMap != nil {
		out = append(out, &walkingRouteTool{tmap: s.TMap, logger: logger})
	}
	return out
}

// reply encodes a tool result. Upstream failures are reported to the
// model as {"error": ...} so it can try another path; cancellation of
// the run itself is returned as an error.
func reply(ctx context.Context, logger *slog.Logger, name string, out any, err error) (string, error) {
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		logger.WarnContext(ctx, "tool call failed", slog.String("tool", name), slog.String("error", err.Error()))
		out = map[string]string{"error": err.Error()}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal %s result: %w", name, err)
	}
	return string(data), nil
}

func decodeArgs(name, argumentsInJSON string, v any) error {
	if argumentsInJSON == "" {
		argumentsInJSON = "{}"
	}
	if err := json.Unmarshal([]byte(argumentsInJSON), v); err != nil {
		return fmt.Errorf("%s: invalid arguments: %w", name, err)
	}
	return nil
}

type searchLocalTool struct {
	search *NaverSearch
	logger *slog.Logger
}

func (t *searchLocalTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: ToolSearchLocal,
		Desc: "Search Naver local listings for restaurants, shops and places by keyword.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Desc:     "Search keyword, e.g. '성수동 맛집'",
				Type:     schema.String,
				Required: true,
			},
			"display": {
				Desc: "Number of results, 1 to 5 (default 5)",
				Type: schema.Integer,
			},
		}),
	}, nil
}

func (t *searchLocalTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args struct {
		Query   string `json:"query"`
		Display int    `json:"display"`
	}
	if err := decodeArgs(ToolSearchLocal, argumentsInJSON, &args); err != nil {
		return reply(ctx, t.logger, ToolSearchLocal, nil, err)
	}
	places, err := t.search.SearchLocal(ctx, args.Query, args.Display)
	return reply(ctx, t.logger, ToolSearchLocal, places, err)
}

type latLngTool struct {
	m      *NaverMap
	logger *slog.Logger
}

func (t *latLngTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: ToolLatLng,
		Desc: "Convert a street address into latitude and longitude. Returns null when the address is unknown.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"address": {
				Desc:     "Road or lot address",
				Type:     schema.String,
				Required: true,
			},
		}),
	}, nil
}

func (t *latLngTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args struct {
		Address string `json:"address"`
	}
	if err := decodeArgs(ToolLatLng, argumentsInJSON, &args); err != nil {
		return reply(ctx, t.logger, ToolLatLng, nil, err)
	}

	coords, ok, err := t.m.Coordinates(ctx, args.Address)
	if err != nil || !ok {
		return reply(ctx, t.logger, ToolLatLng, nil, err)
	}
	return reply(ctx, t.logger, ToolLatLng, coords, nil)
}

type addressTool struct {
	m      *NaverMap
	logger *slog.Logger
}

func (t *addressTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: ToolAddress,
		Desc: "Convert latitude and longitude into a region name such as '서울특별시 강남구 역삼동'.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"lat": {Desc: "Latitude", Type: schema.Number, Required: true},
			"lng": {Desc: "Longitude", Type: schema.Number, Required: true},
		}),
	}, nil
}

func (t *addressTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args Coordinates
	if err := decodeArgs(ToolAddress, argumentsInJSON, &args); err != nil {
		return reply(ctx, t.logger, ToolAddress, nil, err)
	}

	addr, ok, err := t.m.Address(ctx, args.Lat, args.Lng)
	if err != nil || !ok {
		return reply(ctx, t.logger, ToolAddress, nil, err)
	}
	return reply(ctx, t.logger, ToolAddress, addr, nil)
}

type wikipediaTool struct {
	wiki   *Wikipedia
	logger *slog.Logger
}

func (t *wikipediaTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: ToolWikipedia,
		Desc: "Look up the Korean and English Wikipedia articles for a keyword: history, origin, people.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Desc:     "Article title",
				Type:     schema.String,
				Required: true,
			},
		}),
	}, nil
}

func (t *wikipediaTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := decodeArgs(ToolWikipedia, argumentsInJSON, &args); err != nil {
		return reply(ctx, t.logger, ToolWikipedia, nil, err)
	}
	texts, err := t.wiki.SearchGlobal(ctx, args.Query)
	return reply(ctx, t.logger, ToolWikipedia, texts, err)
}

type walkingRouteTool struct {
	tmap   *TMap
	logger *slog.Logger
}

func (t *walkingRouteTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: ToolWalkingRoute,
		Desc: "Walking distance in meters and time in seconds between two points.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"start_lat":  {Desc: "Start latitude", Type: schema.Number, Required: true},
			"start_lng":  {Desc: "Start longitude", Type: schema.Number, Required: true},
			"end_lat":    {Desc: "Destination latitude", Type: schema.Number, Required: true},
			"end_lng":    {Desc: "Destination longitude", Type: schema.Number, Required: true},
			"start_name": {Desc: "Start label", Type: schema.String},
			"end_name":   {Desc: "Destination label", Type: schema.String},
			"option": {
				Desc: "0 recommended, 4 prefer main roads, 10 shortest (default), 30 shortest without stairs",
				Type: schema.Integer,
				Enum: []string{"0", "4", "10", "30"},
			},
		}),
	}, nil
}

func (t *walkingRouteTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args struct {
		StartLat  float64 `json:"start_lat"`
		StartLng  float64 `json:"start_lng"`
		EndLat    float64 `json:"end_lat"`
		EndLng    float64 `json:"end_lng"`
		StartName string  `json:"start_name"`
		EndName   string  `json:"end_name"`
		Option    int     `json:"option"`
	}
	if err := decodeArgs(ToolWalkingRoute, argumentsInJSON, &args); err != nil {
		return reply(ctx, t.logger, ToolWalkingRoute, nil, err)
	}

	summary, err := t.tmap.RouteSummary(ctx, RouteRequest{
		Start:     Coordinates{Lat: args.StartLat, Lng: args.StartLng},
		End:       Coordinates{Lat: args.EndLat, Lng: args.EndLng},
		StartName: args.StartName,
		EndName:   args.EndName,
		Option:    RouteOption(args.Option),
	})
	return reply(ctx, t.logger, ToolWalkingRoute, summary, err)
}
