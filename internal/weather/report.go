package weather

import (
	"fmt"
	"strconv"
)

const reportTemplate = "Местное время: %s\n" +
	"Город: %s\n" +
	"Погодные условия: %s\n" +
	"Температура: %s°C\n" +
	"Ощущается как: %s°C\n" +
	"Скорость ветра: %s м/с\n"

// FormatReport renders a record with the fixed report template.
func FormatReport(r Record) string {
	return fmt.Sprintf(reportTemplate,
		r.LocalTime,
		r.City,
		r.Condition,
		FormatFloat(r.Temperature),
		FormatFloat(r.FeelsLike),
		FormatFloat(r.WindSpeed),
	)
}

// FormatFloat prints the shortest decimal form that round-trips, e.g. 12.5 or 3.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
