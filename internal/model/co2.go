package model

import "regexp"

// CO2Record is a single emissions data point as stored in the co2_data table.
type CO2Record struct {
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Year        int     `json:"year"`
	Emissions   float64 `json:"emissions"`
	Source      string  `json:"source"`
	DataType    string  `json:"dataType"`
}

// GlobalCode is the pseudo country code for worldwide aggregates.
const GlobalCode = "GLOBAL"

// CO2Series is the columnar series shape returned by the data endpoints.
type CO2Series struct {
	Country   string    `json:"country,omitempty"`
	Years     []int     `json:"years"`
	Emissions []float64 `json:"emissions"`
}

// TimelinePoint is one entry of a visualization timeline.
type TimelinePoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Timeline is the visualization shape for a country's emission history.
type Timeline struct {
	Country  string          `json:"country"`
	Timeline []TimelinePoint `json:"timeline"`
}

// countryCodePattern matches ISO-style 2-3 letter country codes.
var countryCodePattern = regexp.MustCompile(`^[A-Za-z]{2,3}$`)

// ValidCountryCode reports whether code looks like a 2-3 letter country code.
// The GLOBAL pseudo code is not accepted here; it has dedicated endpoints.
func ValidCountryCode(code string) bool {
	return countryCodePattern.MatchString(code)
}
