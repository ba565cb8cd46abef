package weather

import (
	"testing"
	"time"

	owm "elaina/infrastructure/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed(t *testing.T) {
	uv := 7.3
	aqi := 75
	report := &owm.Report{
		City:          "Đà Nẵng",
		Temperature:   29.5,
		TempMin:       27,
		TempMax:       31,
		Humidity:      80,
		Pressure:      1009,
		WindSpeed:     3.4,
		WindDirection: "Southeast",
		Description:   "light rain",
		Icon:          "10d",
		Condition:     owm.ConditionRain,
		UVIndex:       &uv,
		AQI:           &aqi,
		AQILabel:      "Moderate",
		Forecast: []owm.DailyForecast{
			{Date: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), AvgTemp: 28.2, ChanceRain: 60, Description: "rain"},
		},
	}

	embed := Embed(report, time.Now())
	assert.Equal(t, "Weather in Đà Nẵng", embed.Title)
	assert.Equal(t, "Light rain", embed.Description)
	assert.Equal(t, owm.ConditionRain.Color(), embed.Color)
	require.Len(t, embed.Fields, 8)
	assert.Equal(t, "29.5°C", embed.Fields[0].Value)
	assert.Equal(t, "3.4 m/s, Southeast", embed.Fields[3].Value)
	assert.Equal(t, "7.3", embed.Fields[5].Value)
	assert.Equal(t, "75 (Moderate)", embed.Fields[6].Value)
	assert.Contains(t, embed.Fields[7].Value, "**Sat 17/10** 28.2°C, rain, 60% rain")
	require.NotNil(t, embed.Thumbnail)
}

func TestEmbedMissingExtras(t *testing.T) {
	embed := Embed(&owm.Report{City: "Huế", AQILabel: "Unknown"}, time.Now())
	require.Len(t, embed.Fields, 7)
	assert.Equal(t, "N/A", embed.Fields[5].Value)
	assert.Equal(t, "Unknown", embed.Fields[6].Value)
	assert.Nil(t, embed.Thumbnail)
}
