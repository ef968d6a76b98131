package controller

import (
	"math"
	"strconv"

	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/types"
	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/views"
)

// hourLabel formats an hour of day the way the display does: 12-hour with an
// "A"/"P" suffix.
func hourLabel(hour int) string {
	if hour > 12 {
		return strconv.Itoa(hour%12) + "P"
	}
	return strconv.Itoa(hour) + "A"
}

func (c *forecastControllerImpl) dashboardData() (*views.DashboardData, error) {
	snap, err := c.service.Latest()
	if err != nil {
		return nil, err
	}
	frame, err := c.service.LatestFrame()
	if err != nil {
		return nil, err
	}

	data := &views.DashboardData{
		DisplayID: c.displayID,
		HasFrame:  frame != nil,
	}
	if snap == nil {
		return data, nil
	}
	data.FetchedAt = snap.FetchedAt

	cols := types.SampleColumns(snap.Hours, c.columns, c.step)
	data.Columns = make([]views.ConditionColumn, 0, len(cols))
	for _, h := range cols {
		data.Columns = append(data.Columns, views.ConditionColumn{
			HourLabel: hourLabel(h.Hour),
			Temp:      int(math.Round(h.Temp)),
			Icon:      h.Icon,
			PopPct:    int(math.Round(h.Pop * 100)),
		})
	}
	return data, nil
}
