package openweather

// OneCallResponse is the subset of the OneCall payload the service reads:
// hourly forecast, current observation time, and the location's UTC offset.
type OneCallResponse struct {
	Lat            float64       `json:"lat"`
	Lon            float64       `json:"lon"`
	Timezone       string        `json:"timezone"`
	TimezoneOffset int           `json:"timezone_offset"`
	Current        Current       `json:"current"`
	Hourly         []HourlyEntry `json:"hourly"`
}

type Current struct {
	Dt   int64   `json:"dt"`
	Temp float64 `json:"temp"`
}

type HourlyEntry struct {
	Dt      int64       `json:"dt"`
	Temp    float64     `json:"temp"`
	Pop     float64     `json:"pop"`
	Weather []Condition `json:"weather"`
}

type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// APIError is the error body OpenWeather returns on non-200 responses.
type APIError struct {
	Cod     any    `json:"cod"` // number or string depending on endpoint
	Message string `json:"message"`
}
