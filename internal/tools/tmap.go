package tools

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const serviceTMap = "T-Map Pedestrian API"

// RouteOption selects the pedestrian path search strategy.
type RouteOption int

const (
	RouteRecommended         RouteOption = 0
	RouteRecommendedMainRoad RouteOption = 4
	RouteShortest            RouteOption = 10
	RouteShortestNoStairs    RouteOption = 30
)

// Valid reports whether T-Map accepts o.
func (o RouteOption) Valid() bool {
	switch o {
	case RouteRecommended, RouteRecommendedMainRoad, RouteShortest, RouteShortestNoStairs:
		return true
	}
	return false
}

// RouteRequest describes a walk between two WGS84 points.
type RouteRequest struct {
	Start, End         Coordinates
	StartName, EndName string
	Option             RouteOption
	// PassList is "x1,y1_x2,y2", at most five waypoints.
	PassList string
}

// RouteSummary is the part of a route the agent needs.
type RouteSummary struct {
	TotalDistanceM int64  `json:"total_distance_m"`
	TotalTimeSec   int64  `json:"total_time_sec"`
	Description    string `json:"description"`
}

// TMap calls the SK open API pedestrian routing service.
type TMap struct {
	client  *Client
	baseURL string
	appKey  string
}

func NewTMap(c *Client, baseURL, appKey string) *TMap {
	return &TMap{client: c, baseURL: strings.TrimRight(baseURL, "/"), appKey: appKey}
}

// PedestrianRoute returns the raw GeoJSON feature collection.
func (t *TMap) PedestrianRoute(ctx context.Context, r RouteRequest) (json.RawMessage, error) {
	if r.StartName == "" {
		r.StartName = "출발지"
	}
	if r.EndName == "" {
		r.EndName = "목적지"
	}
	if !r.Option.Valid() {
		r.Option = RouteRecommended
	}

	payload := map[string]any{
		"startX":       r.Start.Lng,
		"startY":       r.Start.Lat,
		"endX":         r.End.Lng,
		"endY":         r.End.Lat,
		"startName":    url.PathEscape(r.StartName),
		"endName":      url.PathEscape(r.EndName),
		"searchOption": formatOption(r.Option),
		"sort":         "index",
		"reqCoordType": "WGS84GEO",
		"resCoordType": "WGS84GEO",
	}
	if r.PassList != "" {
		payload["passList"] = r.PassList
	}

	return t.client.PostJSON(ctx, serviceTMap, t.baseURL+"/tmap/routes/pedestrian?version=1", payload,
		map[string]string{"appKey": t.appKey})
}

// RouteSummary walks from start to end and extracts the totals carried
// by the first feature. A zero Option means shortest path.
func (t *TMap) RouteSummary(ctx context.Context, r RouteRequest) (RouteSummary, error) {
	if r.Option == 0 {
		r.Option = RouteShortest
	}
	body, err := t.PedestrianRoute(ctx, r)
	if err != nil {
		return RouteSummary{}, err
	}

	props := gjson.GetBytes(body, "features.0.properties")
	if !props.Exists() {
		return RouteSummary{}, &ExternalServiceError{
			Service: serviceTMap,
			Status:  500,
			Detail:  "response has no route features",
		}
	}
	return RouteSummary{
		TotalDistanceM: props.Get("totalDistance").Int(),
		TotalTimeSec:   props.Get("totalTime").Int(),
		Description:    props.Get("description").String(),
	}, nil
}

func formatOption(o RouteOption) string {
	switch o {
	case RouteRecommendedMainRoad:
		return "4"
	case RouteShortest:
		return "10"
	case RouteShortestNoStairs:
		return "30"
	default:
		return "0"
	}
}
