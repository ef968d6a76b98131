package forecast

import (
	"net/http"

	"github.com/mesembria/Magtag-Weather-Odin/internal/config"
	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/controller"
	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/service"
)

func RegisterFeature(mux *http.ServeMux, svc *service.Service, cfg config.Config) {
	forecastController := controller.NewForecastController(svc, cfg.DisplayID, cfg.ForecastColumns, cfg.ForecastStep)
	forecastController.RegisterRoutes(mux)
}
