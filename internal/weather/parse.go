package weather

import (
	"fmt"
	"time"
)

// LocalTimeLayout is the layout of Record.LocalTime and of the history column.
const LocalTimeLayout = "2006-01-02 15:04:05"

// Parse extracts a Record from a raw OpenWeatherMap current-weather payload.
// Any missing key yields a *MissingFieldError.
func Parse(raw RawResponse) (Record, error) {
	city, err := getString(raw, "name", "name")
	if err != nil {
		return Record{}, err
	}
	dt, err := getFloat(raw, "dt", "dt")
	if err != nil {
		return Record{}, err
	}
	offset, err := getFloat(raw, "timezone", "timezone")
	if err != nil {
		return Record{}, err
	}

	main := getMap(raw, "main")
	temp, err := getFloat(main, "temp", "main.temp")
	if err != nil {
		return Record{}, err
	}
	feelsLike, err := getFloat(main, "feels_like", "main.feels_like")
	if err != nil {
		return Record{}, err
	}

	description, err := getString(getFirstInArray(raw, "weather"), "description", "weather[0].description")
	if err != nil {
		return Record{}, err
	}

	windSpeed, err := getFloat(getMap(raw, "wind"), "speed", "wind.speed")
	if err != nil {
		return Record{}, err
	}

	return Record{
		LocalTime:   LocalTime(int64(dt), int(offset)),
		City:        city,
		Condition:   description,
		Temperature: temp,
		FeelsLike:   feelsLike,
		WindSpeed:   windSpeed,
	}, nil
}

// LocalTime renders a unix timestamp in the fixed zone given by offsetSeconds
// east of UTC. The host time zone never takes part.
func LocalTime(unix int64, offsetSeconds int) string {
	zone := time.FixedZone(zoneName(offsetSeconds), offsetSeconds)
	return time.Unix(unix, 0).In(zone).Format(LocalTimeLayout)
}

func zoneName(offsetSeconds int) string {
	sign := '+'
	if offsetSeconds < 0 {
		sign = '-'
		offsetSeconds = -offsetSeconds
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offsetSeconds/3600, offsetSeconds%3600/60)
}

func getMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func getFirstInArray(m map[string]any, key string) map[string]any {
	arr, ok := m[key].([]any)
	if !ok || len(arr) == 0 {
		return nil
	}
	if v, ok := arr[0].(map[string]any); ok {
		return v
	}
	return nil
}

func getFloat(m map[string]any, key, path string) (float64, error) {
	switch v := m[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, &MissingFieldError{Field: path}
}

func getString(m map[string]any, key, path string) (string, error) {
	if v, ok := m[key].(string); ok {
		return v, nil
	}
	return "", &MissingFieldError{Field: path}
}
