package main

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"weathernow/models"
)

const placeholder = "--"

func renderReport(w io.Writer, r models.Report, days int) {
	temp := r.Units.TemperatureSuffix()
	cur := r.Current
	title := cases.Title(language.English)

	header := fmt.Sprintf("Weather for %s:", cur.Location)
	fmt.Fprintf(w, "%s\n", header)
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", len([]rune(header))))
	fmt.Fprintf(w, "Conditions:  %s\n", title.String(cur.Description))
	fmt.Fprintf(w, "Temperature: %d%s\n", cur.Temperature, temp)
	fmt.Fprintf(w, "Feels Like:  %d%s\n", cur.FeelsLike, temp)
	fmt.Fprintf(w, "Humidity:    %d%%\n", cur.Humidity)
	fmt.Fprintf(w, "Wind Speed:  %d %s\n", cur.WindSpeed, r.Units.SpeedSuffix())
	if cur.Icon != "" {
		fmt.Fprintf(w, "Icon:        %s\n", models.IconURL(cur.Icon))
	}
	fmt.Fprintln(w)

	header = fmt.Sprintf("%d-Day Forecast:", days)
	fmt.Fprintf(w, "%s\n", header)
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(header)))

	for i := 0; i < days; i++ {
		if i >= len(r.Forecast) {
			// the gateway returned fewer days than we show
			fmt.Fprintf(w, "%-3s %-10s %-25s High: %s°  Low: %s°\n", placeholder, "", "", placeholder, placeholder)
			continue
		}
		day := r.Forecast[i]
		fmt.Fprintf(w, "%-3s %-10s %-25s High: %d%s  Low: %d%s\n",
			day.Weekday,
			day.DateKey,
			title.String(day.Description),
			day.Max, temp,
			day.Min, temp)
	}
}
