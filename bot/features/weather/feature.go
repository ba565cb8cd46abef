package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"elaina/bot/common"
	owm "elaina/infrastructure/weather"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Reporter fetches a weather report for a city
type Reporter interface {
	Current(ctx context.Context, city string) (*owm.Report, error)
}

// Feature handles /weather
type Feature struct {
	reporter Reporter
	now      func() time.Time
}

// NewFeature creates a new weather feature instance
func NewFeature(reporter Reporter) *Feature {
	return &Feature{
		reporter: reporter,
		now:      time.Now,
	}
}

// HandleCommand reports the weather for the requested city
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_, opts := common.Subcommand(i)
	city := strings.TrimSpace(common.StringOption(opts, "city", ""))
	if city == "" {
		common.RespondWithError(s, i, "Enter a city name.")
		return
	}

	// three upstream calls can exceed the interaction deadline
	if err := common.DeferResponse(s, i, false); err != nil {
		log.WithError(err).Error("Failed to defer weather response")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	report, err := f.reporter.Current(ctx, city)
	if err != nil {
		if errors.Is(err, owm.ErrLocationNotFound) {
			common.HandleError(s, i, common.NewUserError(fmt.Sprintf("No weather found for **%s**.", city), "weather location not found"), true)
			return
		}
		common.HandleError(s, i, common.NewSystemError(err, "failed to fetch weather"), true)
		return
	}

	if _, err := common.FollowUpWithEmbed(s, i, Embed(report, f.now()), nil, false); err != nil {
		log.WithError(err).Error("Failed to send weather report")
	}
}

// HandleAutocomplete suggests known cities
func (f *Feature) HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_, current := common.FocusedOption(i)
	cities := owm.MatchCities(current, common.MaxAutocomplete)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(cities))
	for n, city := range cities {
		choices[n] = &discordgo.ApplicationCommandOptionChoice{Name: city, Value: city}
	}
	if err := common.RespondWithChoices(s, i, choices); err != nil {
		log.WithError(err).Debug("Failed to send weather autocomplete")
	}
}

// Embed formats a report
func Embed(r *owm.Report, now time.Time) *discordgo.MessageEmbed {
	uv := "N/A"
	if r.UVIndex != nil {
		uv = fmt.Sprintf("%.1f", *r.UVIndex)
	}
	aqi := r.AQILabel
	if r.AQI != nil {
		aqi = fmt.Sprintf("%d (%s)", *r.AQI, r.AQILabel)
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Weather in %s", r.City),
		Description: capitalize(r.Description),
		Color:       r.Condition.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🌡️ Temperature", Value: fmt.Sprintf("%.1f°C", r.Temperature), Inline: true},
			{Name: "📉 Low / 📈 High", Value: fmt.Sprintf("%.1f°C / %.1f°C", r.TempMin, r.TempMax), Inline: true},
			{Name: "💧 Humidity", Value: fmt.Sprintf("%d%%", r.Humidity), Inline: true},
			{Name: "🌬️ Wind", Value: fmt.Sprintf("%.1f m/s, %s", r.WindSpeed, r.WindDirection), Inline: true},
			{Name: "🔽 Pressure", Value: fmt.Sprintf("%d hPa", r.Pressure), Inline: true},
			{Name: "☀️ UV index", Value: uv, Inline: true},
			{Name: "🏭 Air quality", Value: aqi, Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "OpenWeatherMap"},
		Timestamp: now.Format(time.RFC3339),
	}
	if icon := r.IconURL(); icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: icon}
	}

	if len(r.Forecast) > 0 {
		lines := make([]string, len(r.Forecast))
		for n, day := range r.Forecast {
			lines[n] = fmt.Sprintf("**%s** %.1f°C, %s, %d%% rain", day.Date.Format("Mon 02/01"), day.AvgTemp, day.Description, day.ChanceRain)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "📅 Forecast",
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Command is the /weather definition
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "weather",
		Description: "Show the current weather for a city",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "city",
				Description:  "City name",
				Required:     true,
				Autocomplete: true,
			},
		},
	}
}
