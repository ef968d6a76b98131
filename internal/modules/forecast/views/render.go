package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"time"
)

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// ConditionColumn is the view model for one forecast column.
type ConditionColumn struct {
	HourLabel string
	Temp      int
	Icon      string
	PopPct    int
}

// DashboardData is the view model for the dashboard page.
type DashboardData struct {
	DisplayID string
	FetchedAt time.Time
	HasFrame  bool
	Columns   []ConditionColumn
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderConditionsPartial executes only the conditions partial into w.
// Use for fragment refresh.
func RenderConditionsPartial(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/conditions.html", data)
}
