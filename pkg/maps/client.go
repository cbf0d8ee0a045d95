package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

const (
	defaultBaseURL             = "https://routes.googleapis.com"
	routesFieldMask            = "routes.duration,routes.distanceMeters"
	errorBodyReadLimit   int64 = 1024
)

var (
	errAPIKeyRequired = errors.New("google maps api key is required")
)

// Client wraps the Google Routes API used for delivery travel estimates.
// It is optional: callers fall back to the haversine heuristic when no API
// key is configured.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Routes base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Google Routes client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// TravelEstimate is the normalized result of a route computation.
type TravelEstimate struct {
	Minutes    float64
	DistanceKM float64
}

type computeRoutesRequest struct {
	Origin            waypoint `json:"origin"`
	Destination       waypoint `json:"destination"`
	TravelMode        string   `json:"travelMode"`
	RoutingPreference string   `json:"routingPreference,omitempty"`
}

type waypoint struct {
	Location location `json:"location"`
}

type location struct {
	LatLng latLng `json:"latLng"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type computeRoutesResponse struct {
	Routes []struct {
		Duration       string `json:"duration"`
		DistanceMeters int    `json:"distanceMeters"`
	} `json:"routes"`
}

// TravelTime estimates driving time between two points.
func (c *Client) TravelTime(ctx context.Context, origin, destination types.GeographyPoint) (TravelEstimate, error) {
	if c == nil {
		return TravelEstimate{}, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}

	payload, err := json.Marshal(computeRoutesRequest{
		Origin:            waypoint{Location: location{LatLng: latLng{Latitude: origin.Lat, Longitude: origin.Lng}}},
		Destination:       waypoint{Location: location{LatLng: latLng{Latitude: destination.Lat, Longitude: destination.Lng}}},
		TravelMode:        "DRIVE",
		RoutingPreference: "TRAFFIC_AWARE",
	})
	if err != nil {
		return TravelEstimate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal routes request")
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/directions/v2:computeRoutes"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return TravelEstimate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build routes request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", routesFieldMask)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return TravelEstimate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute routes request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return TravelEstimate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "routes request failed")
	}

	var decoded computeRoutesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return TravelEstimate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode routes response")
	}
	if len(decoded.Routes) == 0 {
		return TravelEstimate{}, pkgerrors.New(pkgerrors.CodeDependency, "routes response contained no routes")
	}

	seconds, err := parseDurationSeconds(decoded.Routes[0].Duration)
	if err != nil {
		return TravelEstimate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse route duration")
	}

	return TravelEstimate{
		Minutes:    seconds / 60,
		DistanceKM: float64(decoded.Routes[0].DistanceMeters) / 1000,
	}, nil
}

// parseDurationSeconds handles the "123s" protobuf duration wire form.
func parseDurationSeconds(raw string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "s")
	if trimmed == "" {
		return 0, fmt.Errorf("empty duration %q", raw)
	}
	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	return seconds, nil
}
