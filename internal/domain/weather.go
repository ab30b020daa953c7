package domain

import "time"

// WeatherCondition is the display form of a WMO weather code.
type WeatherCondition struct {
	Emoji       string
	Description string
}

// ThermometerMarker is the emoji shown when a code has no entry.
const ThermometerMarker = "🌡️"

// UnknownCondition is shown for codes missing from the table.
var UnknownCondition = WeatherCondition{Emoji: ThermometerMarker, Description: "Unknown conditions"}

var weatherCodes = map[int]WeatherCondition{
	0:  {"☀️", "Clear sky"},
	1:  {"🌤️", "Mainly clear"},
	2:  {"⛅", "Partly cloudy"},
	3:  {"☁️", "Overcast"},
	45: {"🌫️", "Fog"},
	48: {"🌫️", "Rime fog"},
	51: {"🌧️", "Light drizzle"},
	53: {"🌧️", "Moderate drizzle"},
	55: {"🌧️", "Dense drizzle"},
	56: {"🌧️❄️", "Light freezing drizzle"},
	57: {"🌧️❄️", "Dense freezing drizzle"},
	61: {"🌧️", "Slight rain"},
	63: {"🌧️", "Moderate rain"},
	65: {"🌧️", "Heavy rain"},
	66: {"🌧️❄️", "Light freezing rain"},
	67: {"🌧️❄️", "Heavy freezing rain"},
	71: {"❄️", "Slight snow"},
	73: {"❄️", "Moderate snow"},
	75: {"❄️", "Heavy snow"},
	77: {"❄️", "Snow grains"},
	80: {"🌦️", "Slight rain showers"},
	81: {"🌦️", "Moderate rain showers"},
	82: {"🌦️", "Violent rain showers"},
	85: {"🌨️", "Slight snow showers"},
	86: {"🌨️", "Heavy snow showers"},
	95: {"⛈️", "Thunderstorm"},
	96: {"⛈️💧", "Thunderstorm with slight hail"},
	99: {"⛈️🧊", "Thunderstorm with heavy hail"},
}

// LookupWeatherCode returns the condition for a WMO code. The boolean is false
// and the result is UnknownCondition when the code is not in the table.
func LookupWeatherCode(code int) (WeatherCondition, bool) {
	c, ok := weatherCodes[code]
	if !ok {
		return UnknownCondition, false
	}
	return c, true
}

// WeatherCodes returns every code in the table, unordered.
func WeatherCodes() []int {
	codes := make([]int, 0, len(weatherCodes))
	for code := range weatherCodes {
		codes = append(codes, code)
	}
	return codes
}

// WeatherPayload is the subset of a forecast response the bot reads.
// Current and Daily are nil when the upstream omitted them.
type WeatherPayload struct {
	Current *CurrentWeather
	Daily   *DailyWeather
}

// CurrentWeather holds the current-conditions block.
type CurrentWeather struct {
	Temperature float64
	Humidity    float64
	WindSpeed   float64
	WeatherCode int
}

// DailyWeather holds per-day arrays; index 0 is today.
type DailyWeather struct {
	TemperatureMax []float64
	TemperatureMin []float64
	WeatherCode    []int
}

// WeatherReport is a formatted-ready view assembled per request.
type WeatherReport struct {
	Location    string
	Date        time.Time
	Condition   WeatherCondition
	Temperature float64
	Humidity    float64
	WindSpeed   float64
	DailyMin    float64
	DailyMax    float64
}
