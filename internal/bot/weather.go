package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
)

const weatherDateLayout = "Monday, January 02"

// WeatherRequest is the input to the weather command.
type WeatherRequest struct {
	Location string // free text; empty means use the saved location
	UserID   string
	Save     bool // persist the geocoded location for UserID
}

// Weather resolves a location, fetches the forecast and formats a report.
func (h *Handlers) Weather(ctx context.Context, req WeatherRequest) (string, error) {
	loc, saved, err := h.resolveWeatherLocation(ctx, req)
	if err != nil {
		return "", err
	}

	payload, err := h.weather.Forecast(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		var ue *domain.UpstreamError
		if errors.As(err, &ue) {
			return "", fail("🚫 Weather service error: "+ue.Reason, err)
		}
		return "", fail("🚫 Weather API error: "+causeOf(err), err)
	}

	report, err := buildWeatherReport(loc.DisplayName, payload)
	if err != nil {
		return "", fail("🚫 Weather processing error: incomplete forecast data", err)
	}

	text := formatWeatherReport(report)
	if saved {
		text = "✅ Location saved! " + text
	}
	return text, nil
}

// resolveWeatherLocation prefers the saved location when no text is given,
// otherwise geocodes the text and saves it when asked to.
func (h *Handlers) resolveWeatherLocation(ctx context.Context, req WeatherRequest) (domain.UserLocation, bool, error) {
	location := strings.TrimSpace(req.Location)

	if location == "" && req.UserID != "" {
		if loc, ok := h.store.Get(req.UserID); ok {
			return loc, false, nil
		}
	}
	if location == "" {
		return domain.UserLocation{}, false,
			fail("Please provide a location or set a default with `/setlocation`", ErrLocationRequired)
	}

	place, err := h.geocode(ctx, location)
	if err != nil {
		return domain.UserLocation{}, false, err
	}
	loc := place.ForUser(req.UserID)

	if !req.Save || req.UserID == "" {
		return loc, false, nil
	}
	if err := h.store.Set(ctx, req.UserID, loc); err != nil {
		h.logger.Error("saving location failed", "user_id", req.UserID, "error", err)
		return domain.UserLocation{}, false, fail("🚫 Could not save your location, please try again later", err)
	}
	return loc, true, nil
}

// SetLocation geocodes location and saves it as userID's default.
func (h *Handlers) SetLocation(ctx context.Context, userID, location string) (string, error) {
	place, err := h.geocode(ctx, location)
	if err != nil {
		return "", err
	}
	if err := h.store.Set(ctx, userID, place.ForUser(userID)); err != nil {
		h.logger.Error("saving location failed", "user_id", userID, "error", err)
		return "", fail("🚫 Could not save your location, please try again later", err)
	}
	return fmt.Sprintf("✅ Your default location has been set to: **%s**", place.DisplayName), nil
}

// MyLocation describes userID's saved location.
func (h *Handlers) MyLocation(userID string) string {
	loc, ok := h.store.Get(userID)
	if !ok {
		return "You haven't set a default location yet. Use `/setlocation` to set one."
	}
	return fmt.Sprintf("📍 Your saved location is: **%s**", loc.DisplayName)
}

func (h *Handlers) geocode(ctx context.Context, location string) (domain.Place, error) {
	place, err := h.geocoder.Geocode(ctx, location)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.Place{}, fail("📍 Location not found", err)
	case err != nil:
		return domain.Place{}, fail("🚫 Geocoding error: "+causeOf(err), err)
	}
	return place, nil
}

func buildWeatherReport(displayName string, p domain.WeatherPayload) (domain.WeatherReport, error) {
	if p.Current == nil || p.Daily == nil || len(p.Daily.TemperatureMin) == 0 || len(p.Daily.TemperatureMax) == 0 {
		return domain.WeatherReport{}, domain.ParseError("open-meteo", errors.New("forecast is missing current or daily data"))
	}

	condition, _ := domain.LookupWeatherCode(p.Current.WeatherCode)
	return domain.WeatherReport{
		Location:    displayName,
		Date:        clock.Now(),
		Condition:   condition,
		Temperature: p.Current.Temperature,
		Humidity:    p.Current.Humidity,
		WindSpeed:   p.Current.WindSpeed,
		DailyMin:    p.Daily.TemperatureMin[0],
		DailyMax:    p.Daily.TemperatureMax[0],
	}, nil
}

func formatWeatherReport(r domain.WeatherReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s Weather in %s\n", r.Condition.Emoji, r.Location)
	fmt.Fprintf(&b, "### %s\n", r.Date.Format(weatherDateLayout))
	fmt.Fprintf(&b, "**Conditions**: %s\n", r.Condition.Description)
	fmt.Fprintf(&b, "🌡️ **Temperature**: %s°C\n", num(r.Temperature))
	fmt.Fprintf(&b, "↕️ **Daily Range**: %s°C - %s°C\n", num(r.DailyMin), num(r.DailyMax))
	fmt.Fprintf(&b, "💧 **Humidity**: %s%%\n", num(r.Humidity))
	fmt.Fprintf(&b, "💨 **Wind**: %s m/s\n\n", num(r.WindSpeed))
	b.WriteString("_Data from Open-Meteo • Location via OpenStreetMap_")
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
