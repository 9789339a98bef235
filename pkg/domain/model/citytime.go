package model

import "fmt"

// CityTime is the current local time of a city as reported by the time lookup
// provider. Datetime is the provider's formatted local timestamp (e.g.
// "2024-01-01T10:00:00"), Timezone an IANA name (e.g. "Europe/London").
type CityTime struct {
	Datetime  string `json:"datetime"`
	Timezone  string `json:"timezone"`
	DayOfWeek string `json:"day_of_week,omitempty"`
}

// Display renders the time for the home view, e.g.
// "2024-01-01T10:00:00 (Europe/London)"
func (x *CityTime) Display() string {
	return fmt.Sprintf("%s (%s)", x.Datetime, x.Timezone)
}
