package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"

	"weathernow/models"
)

type apiError struct {
	Error   bool   `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the weathernow API")
	city := flag.String("city", "London", "City to look up")
	units := flag.String("units", "metric", "Unit system: metric or imperial")
	flag.Parse()

	fmt.Println("Weather API Client Example")
	fmt.Println("=========================")

	client := resty.New().SetBaseURL(*baseURL)

	var report models.Report
	var apiErr apiError
	resp, err := client.R().
		SetQueryParams(map[string]string{"q": *city, "units": *units}).
		SetResult(&report).
		SetError(&apiErr).
		Get("/api/weather")
	if err != nil {
		fmt.Printf("Error fetching weather: %v\n", err)
		os.Exit(1)
	}
	if resp.IsError() {
		fmt.Printf("Error (%s): %s\n", apiErr.Kind, apiErr.Message)
		os.Exit(1)
	}

	suffix := report.Units.TemperatureSuffix()
	fmt.Printf("\n%s: %d%s, %s\n", report.Current.Location, report.Current.Temperature, suffix, report.Current.Description)
	for _, day := range report.Forecast {
		fmt.Printf("  %s %s  %3d%s / %3d%s  %s\n", day.Weekday, day.DateKey, day.Max, suffix, day.Min, suffix, day.Description)
	}

	// List everything the server has looked up so far
	var listing struct {
		Reports []models.Report `json:"reports"`
		Count   int             `json:"count"`
	}
	if _, err := client.R().SetResult(&listing).Get("/api/weather/locations"); err != nil {
		fmt.Printf("Error fetching locations: %v\n", err)
		os.Exit(1)
	}

	names := make([]string, 0, listing.Count)
	for _, r := range listing.Reports {
		names = append(names, r.Current.Location)
	}
	fmt.Printf("\nLocations served so far (%d): %s\n", listing.Count, strings.Join(names, "; "))
}
