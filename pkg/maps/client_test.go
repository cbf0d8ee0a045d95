package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for blank api key")
	}
}

func TestTravelTimeParsesRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/directions/v2:computeRoutes" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Goog-Api-Key"); got != "test-key" {
			t.Fatalf("unexpected api key header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"routes":[{"duration":"540s","distanceMeters":4200}]}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	estimate, err := client.TravelTime(context.Background(),
		types.GeographyPoint{Lat: 50.85, Lng: 4.35},
		types.GeographyPoint{Lat: 50.86, Lng: 4.36},
	)
	if err != nil {
		t.Fatalf("travel time: %v", err)
	}
	if estimate.Minutes != 9 {
		t.Fatalf("expected 9 minutes, got %v", estimate.Minutes)
	}
	if estimate.DistanceKM != 4.2 {
		t.Fatalf("expected 4.2 km, got %v", estimate.DistanceKM)
	}
}

func TestTravelTimeEmptyRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"routes":[]}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.TravelTime(context.Background(), types.GeographyPoint{}, types.GeographyPoint{}); err == nil {
		t.Fatal("expected error for empty route list")
	}
}

func TestParseDurationSeconds(t *testing.T) {
	if _, err := parseDurationSeconds("not-a-duration"); err == nil {
		t.Fatal("expected parse error")
	}
	seconds, err := parseDurationSeconds("90s")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if seconds != 90 {
		t.Fatalf("expected 90 seconds, got %v", seconds)
	}
}
