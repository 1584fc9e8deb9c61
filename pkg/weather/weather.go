// Package weather fetches current conditions and the daily forecast from
// weatherapi.com.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultBaseURL = "http://api.weatherapi.com/v1"

type Unit string

const (
	Fahrenheit Unit = "fahrenheit"
	Celsius    Unit = "celsius"
)

func ParseUnit(s string) Unit {
	if strings.EqualFold(strings.TrimSpace(s), string(Celsius)) {
		return Celsius
	}
	return Fahrenheit
}

type Config struct {
	APIKey          string        `envconfig:"API_KEY"`
	BaseURL         string        `envconfig:"BASE_URL" default:"http://api.weatherapi.com/v1"`
	DefaultLocation string        `envconfig:"DEFAULT_LOCATION" default:"New York"`
	Unit            string        `envconfig:"UNIT" default:"fahrenheit"`
	Timeout         time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

type Report struct {
	Location      string  `json:"location"`
	Temperature   float64 `json:"temperature"`
	FeelsLike     float64 `json:"feels_like"`
	MaxTemp       float64 `json:"max_temp"`
	MinTemp       float64 `json:"min_temp"`
	Unit          Unit    `json:"unit"`
	Forecast      string  `json:"forecast"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection string  `json:"wind_direction"`
	Humidity      int64   `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	Precipitation float64 `json:"precipitation"`
	Sunrise       string  `json:"sunrise"`
	Sunset        string  `json:"sunset"`
	Moonrise      string  `json:"moonrise"`
	Moonset       string  `json:"moonset"`
	MoonPhase     string  `json:"moon_phase"`
	WillItRain    bool    `json:"will_it_rain"`
	ChanceOfRain  int64   `json:"chance_of_rain"`
	UV            float64 `json:"uv"`
}

type Client struct {
	baseURL         string
	apiKey          string
	defaultLocation string
	unit            Unit
	httpClient      *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("weather: api key is required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:         base,
		apiKey:          cfg.APIKey,
		defaultLocation: cfg.DefaultLocation,
		unit:            ParseUnit(cfg.Unit),
		httpClient:      &http.Client{Timeout: timeout},
	}, nil
}

// Current returns conditions for location, or the configured default
// location when empty. An empty unit selects the configured unit.
func (c *Client) Current(ctx context.Context, location string, unit string) (Report, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		location = c.defaultLocation
	}
	u := c.unit
	if strings.TrimSpace(unit) != "" {
		u = ParseUnit(unit)
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", location)
	q.Set("days", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/forecast.json?"+q.Encode(), nil)
	if err != nil {
		return Report{}, fmt.Errorf("weather request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Report{}, fmt.Errorf("read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return Report{}, fmt.Errorf("weather status %d: %s", resp.StatusCode, msg)
	}
	return parseReport(body, location, u)
}

func parseReport(body []byte, location string, unit Unit) (Report, error) {
	if !gjson.ValidBytes(body) {
		return Report{}, errors.New("weather: invalid json response")
	}
	doc := gjson.ParseBytes(body)
	current := doc.Get("current")
	day := doc.Get("forecast.forecastday.0")
	if !current.Exists() || !day.Exists() {
		return Report{}, errors.New("weather: response missing current or forecast data")
	}

	temp, speed, length := "_f", "wind_mph", "_in"
	if unit == Celsius {
		temp, speed, length = "_c", "wind_kph", "_mm"
	}

	return Report{
		Location:      location,
		Temperature:   current.Get("temp" + temp).Float(),
		FeelsLike:     current.Get("feelslike" + temp).Float(),
		MaxTemp:       day.Get("day.maxtemp" + temp).Float(),
		MinTemp:       day.Get("day.mintemp" + temp).Float(),
		Unit:          unit,
		Forecast:      current.Get("condition.text").String(),
		WindSpeed:     current.Get(speed).Float(),
		WindDirection: current.Get("wind_dir").String(),
		Humidity:      current.Get("humidity").Int(),
		Pressure:      current.Get("pressure" + pressureSuffix(unit)).Float(),
		Precipitation: current.Get("precip" + length).Float(),
		Sunrise:       day.Get("astro.sunrise").String(),
		Sunset:        day.Get("astro.sunset").String(),
		Moonrise:      day.Get("astro.moonrise").String(),
		Moonset:       day.Get("astro.moonset").String(),
		MoonPhase:     day.Get("astro.moon_phase").String(),
		WillItRain:    day.Get("day.daily_will_it_rain").Int() == 1,
		ChanceOfRain:  day.Get("day.daily_chance_of_rain").Int(),
		UV:            current.Get("uv").Float(),
	}, nil
}

func pressureSuffix(unit Unit) string {
	if unit == Celsius {
		return "_mb"
	}
	return "_in"
}
