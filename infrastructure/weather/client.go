package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	countryCode    = "VN"
	forecastDays   = 3
	requestTimeout = 10 * time.Second
)

// ErrLocationNotFound is returned when the API does not know the city
var ErrLocationNotFound = errors.New("location not found")

// Report is everything /weather shows for a city
type Report struct {
	City          string
	Country       string
	Temperature   float64
	TempMin       float64
	TempMax       float64
	Humidity      int
	Pressure      int
	WindSpeed     float64
	WindDirection string
	Description   string
	Icon          string
	Condition     Condition

	// UVIndex and AQI are nil when their endpoint failed
	UVIndex  *float64
	AQI      *int
	AQILabel string

	Forecast []DailyForecast
}

// IconURL returns the OpenWeatherMap icon for the current condition
func (r *Report) IconURL() string {
	if r.Icon == "" {
		return ""
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", r.Icon)
}

// DailyForecast summarises one upcoming day
type DailyForecast struct {
	Date        time.Time
	AvgTemp     float64
	ChanceRain  int
	Description string
}

// Client talks to the OpenWeatherMap 2.5 API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	loc        *time.Location
	now        func() time.Time
}

// NewClient creates a client. An empty baseURL uses DefaultBaseURL and a nil loc uses UTC.
func NewClient(baseURL, apiKey string, loc *time.Location) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		loc:        loc,
		now:        time.Now,
	}
}

type currentResponse struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity int     `json:"humidity"`
		Pressure int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64  `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

type uvResponse struct {
	Value float64 `json:"value"`
}

type airResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Pop     float64 `json:"pop"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

// Current fetches current conditions for city plus UV, air quality and a short forecast.
// Only the current conditions are required; the rest is left empty when its endpoint fails.
func (c *Client) Current(ctx context.Context, city string) (*Report, error) {
	query := RemoveAccents(city) + "," + countryCode

	var current currentResponse
	if err := c.get(ctx, "/weather", url.Values{
		"q":     {query},
		"units": {"metric"},
		"lang":  {"en"},
	}, &current); err != nil {
		return nil, err
	}

	report := &Report{
		City:        city,
		Country:     current.Sys.Country,
		Temperature: current.Main.Temp,
		TempMin:     current.Main.TempMin,
		TempMax:     current.Main.TempMax,
		Humidity:    current.Main.Humidity,
		Pressure:    current.Main.Pressure,
		WindSpeed:   current.Wind.Speed,
		AQILabel:    "Unknown",
	}
	if len(current.Weather) > 0 {
		report.Description = current.Weather[0].Description
		report.Icon = current.Weather[0].Icon
	}
	report.Condition = ParseCondition(report.Description)
	report.WindDirection = "N/A"
	if current.Wind.Deg != nil {
		report.WindDirection = Compass(*current.Wind.Deg)
	}

	coords := url.Values{
		"lat": {strconv.FormatFloat(current.Coord.Lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(current.Coord.Lon, 'f', -1, 64)},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var uv uvResponse
		if err := c.get(gctx, "/uvi", coords, &uv); err != nil {
			log.WithError(err).WithField("city", city).Warn("Failed to fetch UV index")
			return nil
		}
		report.UVIndex = &uv.Value
		return nil
	})
	g.Go(func() error {
		var air airResponse
		if err := c.get(gctx, "/air_pollution", coords, &air); err != nil {
			log.WithError(err).WithField("city", city).Warn("Failed to fetch air quality")
			return nil
		}
		if len(air.List) > 0 {
			value, label := AirQuality(air.List[0].Main.AQI)
			report.AQILabel = label
			if value > 0 {
				report.AQI = &value
			}
		}
		return nil
	})
	g.Go(func() error {
		var forecast forecastResponse
		if err := c.get(gctx, "/forecast", url.Values{
			"q":     {query},
			"units": {"metric"},
		}, &forecast); err != nil {
			log.WithError(err).WithField("city", city).Warn("Failed to fetch forecast")
			return nil
		}
		report.Forecast = c.dailyForecast(&forecast)
		return nil
	})
	// goroutines swallow their errors, so Wait only synchronises
	_ = g.Wait()

	return report, nil
}

// dailyForecast groups 3-hour slots by local date and keeps the days after today
func (c *Client) dailyForecast(resp *forecastResponse) []DailyForecast {
	type bucket struct {
		date  time.Time
		temps []float64
		pop   float64
		desc  string
	}

	today := c.now().In(c.loc).Format(time.DateOnly)
	byDate := make(map[string]*bucket)
	for _, slot := range resp.List {
		local := time.Unix(slot.Dt, 0).In(c.loc)
		key := local.Format(time.DateOnly)
		if key <= today {
			continue
		}
		b, ok := byDate[key]
		if !ok {
			y, m, d := local.Date()
			b = &bucket{date: time.Date(y, m, d, 0, 0, 0, 0, c.loc)}
			byDate[key] = b
		}
		b.temps = append(b.temps, slot.Main.Temp)
		b.pop = max(b.pop, slot.Pop)
		if b.desc == "" && len(slot.Weather) > 0 {
			b.desc = slot.Weather[0].Description
		}
	}

	keys := make([]string, 0, len(byDate))
	for key := range byDate {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > forecastDays {
		keys = keys[:forecastDays]
	}

	days := make([]DailyForecast, 0, len(keys))
	for _, key := range keys {
		b := byDate[key]
		var sum float64
		for _, t := range b.temps {
			sum += t
		}
		avg := float64(int((sum/float64(len(b.temps)))*10+0.5)) / 10
		days = append(days, DailyForecast{
			Date:        b.date,
			AvgTemp:     avg,
			ChanceRain:  int(b.pop * 100),
			Description: b.desc,
		})
	}
	return days
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrLocationNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
