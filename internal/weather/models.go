package weather

// Record is a single normalized weather observation. It is a value type and
// is never mutated after Parse builds it.
type Record struct {
	LocalTime   string  `json:"localTime"`
	City        string  `json:"city"`
	Condition   string  `json:"condition"`
	Temperature float64 `json:"temperatureC"`
	FeelsLike   float64 `json:"feelsLikeC"`
	WindSpeed   float64 `json:"windSpeedMs"`
}

// RawResponse is the decoded weather service payload before field extraction.
type RawResponse map[string]any
