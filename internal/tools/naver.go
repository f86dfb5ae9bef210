package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	serviceNaverSearch  = "Naver Local Search API"
	serviceNaverGeocode = "Naver Geocoding API"
	serviceNaverReverse = "Naver Reverse Geocoding API"

	// DefaultDisplay is the number of places returned when a caller
	// does not ask for a count. Naver caps local search at 5.
	DefaultDisplay = 5

	// DefaultReverseOrders lists the address kinds reverse geocoding returns.
	DefaultReverseOrders = "legalcode,admcode,addr,roadaddr"
)

// Place is one local search hit. MapX and MapY are the raw
// coordinates Naver reports.
type Place struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Telephone   string `json:"telephone"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NaverSearch calls the Naver developer local search API.
type NaverSearch struct {
	client                 *Client
	baseURL                string
	clientID, clientSecret string
}

func NewNaverSearch(c *Client, baseURL, clientID, clientSecret string) *NaverSearch {
	return &NaverSearch{
		client:       c,
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// SearchLocal returns up to display places matching query. A display
// outside 1..5 falls back to DefaultDisplay.
func (n *NaverSearch) SearchLocal(ctx context.Context, query string, display int) ([]Place, error) {
	if display < 1 || display > DefaultDisplay {
		display = DefaultDisplay
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("display", strconv.Itoa(display))
	q.Set("start", "1")
	q.Set("sort", "random")

	body, err := n.client.Get(ctx, serviceNaverSearch, n.baseURL+"/v1/search/local.json", q, map[string]string{
		"X-Naver-Client-Id":     n.clientID,
		"X-Naver-Client-Secret": n.clientSecret,
	})
	if err != nil {
		return nil, err
	}

	places := []Place{}
	items := gjson.GetBytes(body, "items")
	if !items.Exists() {
		return places, nil
	}
	if err := json.Unmarshal([]byte(items.Raw), &places); err != nil {
		return nil, &ExternalServiceError{Service: serviceNaverSearch, Status: 500, Detail: "decode items", Err: err}
	}
	return places, nil
}

// GeocodeParams are the optional geocoding filters.
type GeocodeParams struct {
	Query      string
	Coordinate string
	Filter     string
	Count      int
	Page       int
}

// NaverMap calls the NCP maps geocoding gateway.
type NaverMap struct {
	client                 *Client
	baseURL                string
	clientID, clientSecret string
}

func NewNaverMap(c *Client, baseURL, clientID, clientSecret string) *NaverMap {
	return &NaverMap{
		client:       c,
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

func (n *NaverMap) headers() map[string]string {
	return map[string]string{
		"x-ncp-apigw-api-key-id": n.clientID,
		"x-ncp-apigw-api-key":    n.clientSecret,
	}
}

// Geocode returns the raw geocoding response for p.
func (n *NaverMap) Geocode(ctx context.Context, p GeocodeParams) (json.RawMessage, error) {
	if p.Count <= 0 {
		p.Count = 10
	}
	if p.Page <= 0 {
		p.Page = 1
	}

	q := url.Values{}
	q.Set("query", p.Query)
	q.Set("count", strconv.Itoa(p.Count))
	q.Set("page", strconv.Itoa(p.Page))
	if p.Coordinate != "" {
		q.Set("coordinate", p.Coordinate)
	}
	if p.Filter != "" {
		q.Set("filter", p.Filter)
	}

	return n.client.Get(ctx, serviceNaverGeocode, n.baseURL+"/map-geocode/v2/geocode", q, n.headers())
}

// Coordinates resolves address to its first match. ok is false when
// the address matches nothing.
func (n *NaverMap) Coordinates(ctx context.Context, address string) (Coordinates, bool, error) {
	body, err := n.Geocode(ctx, GeocodeParams{Query: address, Count: 1})
	if err != nil {
		return Coordinates{}, false, err
	}

	res := gjson.ParseBytes(body)
	if res.Get("status").String() != "OK" || res.Get("meta.totalCount").Int() == 0 {
		return Coordinates{}, false, nil
	}

	first := res.Get("addresses.0")
	lat, latErr := strconv.ParseFloat(first.Get("y").String(), 64)
	lng, lngErr := strconv.ParseFloat(first.Get("x").String(), 64)
	if latErr != nil || lngErr != nil {
		return Coordinates{}, false, &ExternalServiceError{
			Service: serviceNaverGeocode,
			Status:  500,
			Detail:  fmt.Sprintf("bad coordinates x=%q y=%q", first.Get("x").String(), first.Get("y").String()),
		}
	}
	return Coordinates{Lat: lat, Lng: lng}, true, nil
}

// ReverseGeocode returns the raw reverse geocoding response for a point.
// An empty orders uses DefaultReverseOrders.
func (n *NaverMap) ReverseGeocode(ctx context.Context, lat, lng float64, orders string) (json.RawMessage, error) {
	if orders == "" {
		orders = DefaultReverseOrders
	}

	q := url.Values{}
	q.Set("coords", fmt.Sprintf("%s,%s", formatCoord(lng), formatCoord(lat)))
	q.Set("orders", orders)
	q.Set("output", "json")

	return n.client.Get(ctx, serviceNaverReverse, n.baseURL+"/map-reversegeocode/v2/gc", q, n.headers())
}

// Address turns a point into a readable region name such as
// "서울특별시 강남구 역삼동". ok is false when nothing matched.
func (n *NaverMap) Address(ctx context.Context, lat, lng float64) (string, bool, error) {
	body, err := n.ReverseGeocode(ctx, lat, lng, "")
	if err != nil {
		return "", false, err
	}

	res := gjson.ParseBytes(body)
	if res.Get("status.code").Int() != 0 || !res.Get("status.code").Exists() {
		return "", false, nil
	}
	region := res.Get("results.0.region")
	if !region.Exists() {
		return "", false, nil
	}

	var parts []string
	for _, key := range []string{"area1.name", "area2.name", "area3.name", "area4.name"} {
		if name := strings.TrimSpace(region.Get(key).String()); name != "" {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "", false, nil
	}
	return strings.Join(parts, " "), true, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
