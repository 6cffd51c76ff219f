package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	openWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	weatherCacheTTL    = 10 * time.Minute
)

type WeatherInfo struct {
	City        string  `json:"city"`
	Temp        int     `json:"temp"`
	FeelsLike   int     `json:"feels_like"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Pressure    int     `json:"pressure"`
}

type openWeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// WeatherService proxies OpenWeatherMap current conditions. Lookups are
// time-bounded and cached; a missing or failing cache degrades to a direct
// fetch rather than an error.
type WeatherService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *redis.Client
}

func NewWeatherService(apiKey string, cache *redis.Client) *WeatherService {
	return &WeatherService{
		apiKey:  apiKey,
		baseURL: openWeatherBaseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		cache:   cache,
	}
}

func (s *WeatherService) Current(ctx context.Context, city, lat, lon string) (WeatherInfo, error) {
	var key string

	if lat != "" && lon != "" {
		key = "weather:coords:" + lat + "," + lon
	} else {
		if city == "" {
			city = "Delhi"
		}
		key = "weather:city:" + city
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			var info WeatherInfo
			if err := json.Unmarshal([]byte(cached), &info); err == nil {
				return info, nil
			}
		}
	}

	info, err := s.fetch(ctx, city, lat, lon)

	if err != nil {
		return WeatherInfo{}, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(info); err == nil {
			s.cache.Set(ctx, key, encoded, weatherCacheTTL)
		}
	}

	return info, nil
}

func (s *WeatherService) fetch(ctx context.Context, city, lat, lon string) (WeatherInfo, error) {
	params := url.Values{}
	params.Set("appid", s.apiKey)
	params.Set("units", "metric")

	if lat != "" && lon != "" {
		params.Set("lat", lat)
		params.Set("lon", lon)
	} else {
		params.Set("q", city)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)

	if err != nil {
		return WeatherInfo{}, err
	}

	resp, err := s.client.Do(req)

	if err != nil {
		return WeatherInfo{}, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return WeatherInfo{}, fmt.Errorf("weather upstream returned %s", resp.Status)
	}

	var data openWeatherResponse

	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return WeatherInfo{}, err
	}

	info := WeatherInfo{
		City:      data.Name,
		Temp:      int(math.Round(data.Main.Temp)),
		FeelsLike: int(math.Round(data.Main.FeelsLike)),
		Humidity:  data.Main.Humidity,
		WindSpeed: data.Wind.Speed,
		Pressure:  data.Main.Pressure,
	}

	if len(data.Weather) > 0 {
		info.Description = data.Weather[0].Description
		info.Icon = data.Weather[0].Icon
	}

	return info, nil
}
