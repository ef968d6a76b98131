package controller

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/views"
	"github.com/mesembria/Magtag-Weather-Odin/internal/utils"
)

func (c *forecastControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data, err := c.dashboardData()
	if err != nil {
		slog.Error("dashboard: load data failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load forecast")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderDashboard(w, data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
}

func (c *forecastControllerImpl) handleConditionsPartial(w http.ResponseWriter, r *http.Request) {
	data, err := c.dashboardData()
	if err != nil {
		slog.Error("conditions: load data failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load forecast")
		return
	}
	var buf bytes.Buffer
	if err := views.RenderConditionsPartial(&buf, data); err != nil {
		slog.Error("conditions partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("conditions: write response failed", "error", err)
	}
}

func (c *forecastControllerImpl) handleLatest(w http.ResponseWriter, r *http.Request) {
	snap, err := c.service.Latest()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snap == nil {
		utils.WriteError(w, http.StatusNotFound, "no forecast stored yet")
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap)
}

func (c *forecastControllerImpl) handleFramePNG(w http.ResponseWriter, r *http.Request) {
	frame, err := c.service.LatestFrame()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if frame == nil {
		utils.WriteError(w, http.StatusNotFound, "no frame rendered yet")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(frame.PNG)))
	if _, err := w.Write(frame.PNG); err != nil {
		slog.Error("frame: write response failed", "error", err)
	}
}

func (c *forecastControllerImpl) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Refresh(r.Context()); err != nil {
		slog.Error("on-demand refresh failed", "error", err)
		utils.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}
