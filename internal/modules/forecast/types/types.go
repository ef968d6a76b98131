package types

import "time"

// Hour is one hour of forecast, projected down to the fields the display needs.
type Hour struct {
	Time int64   `json:"time"` // unix seconds, UTC
	Hour int     `json:"hour"` // hour of day in the location's local time
	Temp float64 `json:"temp"`
	Icon string  `json:"icon"` // OpenWeather icon code, e.g. "10d"
	Pop  float64 `json:"pop"`  // probability of precipitation, 0..1
}

// Snapshot is the result of one fetch cycle: the shaped hourly forecast plus
// the fetch time and the location's UTC offset.
type Snapshot struct {
	ID          int64     `json:"id"`
	FetchedAt   time.Time `json:"fetched_at"`
	TZOffsetSec int       `json:"tz_offset_sec"`
	Hours       []Hour    `json:"hours"`
}

// Frame is one rendered display frame.
type Frame struct {
	DisplayID  string    `json:"display_id"`
	RenderedAt time.Time `json:"rendered_at"`
	PNG        []byte    `json:"-"`
}

// LocalNow returns the wall-clock time at the snapshot's location for the
// given instant.
func (s Snapshot) LocalNow(now time.Time) time.Time {
	return now.UTC().Add(time.Duration(s.TZOffsetSec) * time.Second)
}

// TempRange returns the minimum temperature and the span (max-min) over hours.
// A zero span is reported as-is; callers guard before dividing.
func TempRange(hours []Hour) (min, span float64) {
	if len(hours) == 0 {
		return 0, 0
	}
	min = hours[0].Temp
	max := hours[0].Temp
	for _, h := range hours[1:] {
		if h.Temp > max {
			max = h.Temp
		}
		if h.Temp < min {
			min = h.Temp
		}
	}
	return min, max - min
}

// SampleColumns picks columns hours at stride step, the sampling the display
// layout uses (9 columns every 2 hours covers 18 hours ahead). Returns fewer
// columns when the list runs out.
func SampleColumns(hours []Hour, columns, step int) []Hour {
	if columns <= 0 || step <= 0 {
		return nil
	}
	out := make([]Hour, 0, columns)
	for col := 0; col < columns; col++ {
		i := col * step
		if i >= len(hours) {
			break
		}
		out = append(out, hours[i])
	}
	return out
}
