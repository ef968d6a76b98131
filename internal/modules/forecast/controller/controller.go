package controller

import (
	"context"
	"net/http"

	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/types"
)

// forecastService is the service surface the HTTP handlers use.
type forecastService interface {
	Refresh(ctx context.Context) error
	Latest() (*types.Snapshot, error)
	LatestFrame() (*types.Frame, error)
}

type ForecastController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type forecastControllerImpl struct {
	service   forecastService
	displayID string
	columns   int
	step      int
}

func NewForecastController(service forecastService, displayID string, columns, step int) ForecastController {
	return &forecastControllerImpl{
		service:   service,
		displayID: displayID,
		columns:   columns,
		step:      step,
	}
}

func (c *forecastControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /partials/conditions", c.handleConditionsPartial)
	mux.HandleFunc("GET /api/forecast/latest", c.handleLatest)
	mux.HandleFunc("GET /api/frame.png", c.handleFramePNG)
	mux.HandleFunc("POST /api/refresh", c.handleRefresh)
}
