package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const fakeWeatherPayload = `{
	"name": "Pune",
	"main": {"temp": 27.4, "feels_like": 29.8, "humidity": 64, "pressure": 1008},
	"weather": [{"description": "scattered clouds", "icon": "03d"}],
	"wind": {"speed": 3.6}
}`

func newWeatherTestService(t *testing.T, handler http.HandlerFunc, cache *redis.Client) (*WeatherService, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewWeatherService("test-key", cache)
	svc.baseURL = server.URL

	return svc, server
}

func TestWeatherCurrentShapesUpstreamResponse(t *testing.T) {
	var gotQuery atomic.Value

	svc, _ := newWeatherTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fakeWeatherPayload))
	}, nil)

	info, err := svc.Current(context.Background(), "Pune", "", "")
	if err != nil {
		t.Fatalf("current: %v", err)
	}

	if info.City != "Pune" {
		t.Fatalf("expected city Pune, got %q", info.City)
	}
	if info.Temp != 27 || info.FeelsLike != 30 {
		t.Fatalf("expected rounded temps 27/30, got %d/%d", info.Temp, info.FeelsLike)
	}
	if info.Description != "scattered clouds" || info.Icon != "03d" {
		t.Fatalf("unexpected conditions: %+v", info)
	}
	if info.Humidity != 64 || info.Pressure != 1008 || info.WindSpeed != 3.6 {
		t.Fatalf("unexpected readings: %+v", info)
	}

	query := gotQuery.Load().(url.Values)
	if got := query["q"]; len(got) != 1 || got[0] != "Pune" {
		t.Fatalf("expected q=Pune upstream, got %v", got)
	}
	if got := query["appid"]; len(got) != 1 || got[0] != "test-key" {
		t.Fatalf("expected api key forwarded, got %v", got)
	}
	if got := query["units"]; len(got) != 1 || got[0] != "metric" {
		t.Fatalf("expected metric units, got %v", got)
	}
}

func TestWeatherCurrentDefaultsCity(t *testing.T) {
	var gotQuery atomic.Value

	svc, _ := newWeatherTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Write([]byte(fakeWeatherPayload))
	}, nil)

	if _, err := svc.Current(context.Background(), "", "", ""); err != nil {
		t.Fatalf("current: %v", err)
	}

	query := gotQuery.Load().(url.Values)
	if got := query["q"]; len(got) != 1 || got[0] != "Delhi" {
		t.Fatalf("expected default city Delhi, got %v", got)
	}
}

func TestWeatherCurrentPrefersCoordinates(t *testing.T) {
	var gotQuery atomic.Value

	svc, _ := newWeatherTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Write([]byte(fakeWeatherPayload))
	}, nil)

	if _, err := svc.Current(context.Background(), "Pune", "18.52", "73.86"); err != nil {
		t.Fatalf("current: %v", err)
	}

	query := gotQuery.Load().(url.Values)
	if got := query["lat"]; len(got) != 1 || got[0] != "18.52" {
		t.Fatalf("expected lat forwarded, got %v", got)
	}
	if got := query["lon"]; len(got) != 1 || got[0] != "73.86" {
		t.Fatalf("expected lon forwarded, got %v", got)
	}
	if _, ok := query["q"]; ok {
		t.Fatalf("city must not be sent alongside coordinates")
	}
}

func TestWeatherCurrentCachesLookups(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var calls atomic.Int32

	svc, _ := newWeatherTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(fakeWeatherPayload))
	}, cache)

	first, err := svc.Current(context.Background(), "Pune", "", "")
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	second, err := svc.Current(context.Background(), "Pune", "", "")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}

	if calls.Load() != 1 {
		t.Fatalf("expected a single upstream call, got %d", calls.Load())
	}
	if first != second {
		t.Fatalf("cached result diverged: %+v vs %+v", first, second)
	}
	if !mr.Exists("weather:city:Pune") {
		t.Fatalf("expected cache entry for weather:city:Pune")
	}

	// Expiry forces a refetch.
	mr.FastForward(weatherCacheTTL + 1)

	if _, err := svc.Current(context.Background(), "Pune", "", ""); err != nil {
		t.Fatalf("post-expiry lookup: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected refetch after TTL, got %d calls", calls.Load())
	}
}

func TestWeatherCurrentUpstreamFailure(t *testing.T) {
	svc, _ := newWeatherTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"city not found"}`, http.StatusNotFound)
	}, nil)

	if _, err := svc.Current(context.Background(), "Nowhere", "", ""); err == nil {
		t.Fatalf("expected error for upstream failure")
	}
}
