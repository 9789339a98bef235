package types

// Sentinel display values substituted when real data cannot be resolved.
// These literals are user-visible in the home view and must stay stable.
const (
	// CityNotSet is shown when a member has no city on record
	CityNotSet = "Not set"

	// CityUnavailable is shown when the profile store could not be reached
	CityUnavailable = "Database unavailable"

	// TimeUnavailable is shown when the time lookup for a city failed
	TimeUnavailable = "Time unavailable"
)
