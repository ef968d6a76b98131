package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestLoadTemplates_success(t *testing.T) {
	err := LoadTemplates()
	if err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if dashboardTmpl == nil {
		t.Fatal("LoadTemplates() left dashboardTmpl nil")
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	// Empty FS has no "templates" directory; fs.Sub fails.
	emptyFS := fstest.MapFS{}
	err := loadTemplatesFromFS(emptyFS, "templates")
	if err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS, \"templates\") = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	// FS with invalid template syntax; ParseFS fails.
	badFS := fstest.MapFS{
		"templates/base.html": {Data: []byte("{{ .")},
	}
	err := loadTemplatesFromFS(badFS, "templates")
	if err == nil {
		t.Fatal("loadTemplatesFromFS(badFS, \"templates\") = nil; want error")
	}
}

func TestRenderDashboard_notLoaded(t *testing.T) {
	// Ensure templates are not loaded for this test.
	prev := dashboardTmpl
	dashboardTmpl = nil
	t.Cleanup(func() { dashboardTmpl = prev })

	var buf bytes.Buffer
	err := RenderDashboard(&buf, &DashboardData{})
	if err == nil {
		t.Fatal("RenderDashboard() = nil; want error when templates not loaded")
	}
	if !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("err = %q; want message containing \"not loaded\"", err.Error())
	}
}

func TestRenderDashboard_withData(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}

	data := &DashboardData{
		DisplayID: "magtag",
		FetchedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		HasFrame:  true,
		Columns: []ConditionColumn{
			{HourLabel: "9A", Temp: 61, Icon: "02d", PopPct: 10},
			{HourLabel: "11A", Temp: 64, Icon: "01d", PopPct: 0},
		},
	}

	var buf bytes.Buffer
	if err := RenderDashboard(&buf, data); err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"magtag", "9A", "11A", "/api/frame.png", "02d"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard output missing %q", want)
		}
	}
}

func TestRenderDashboard_noFrame(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}

	var buf bytes.Buffer
	if err := RenderDashboard(&buf, &DashboardData{DisplayID: "magtag"}); err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No frame rendered yet") {
		t.Error("dashboard output missing empty-frame message")
	}
	if strings.Contains(out, "/api/frame.png") {
		t.Error("dashboard output references frame image without a frame")
	}
}

func TestRenderConditionsPartial(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}

	var buf bytes.Buffer
	data := &DashboardData{
		Columns: []ConditionColumn{{HourLabel: "1P", Temp: 70, Icon: "01d", PopPct: 40}},
	}
	if err := RenderConditionsPartial(&buf, data); err != nil {
		t.Fatalf("RenderConditionsPartial: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "1P") || !strings.Contains(out, "40%") {
		t.Errorf("partial output missing column data: %q", out)
	}
}

func TestRenderConditionsPartial_empty(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}

	var buf bytes.Buffer
	if err := RenderConditionsPartial(&buf, &DashboardData{}); err != nil {
		t.Fatalf("RenderConditionsPartial: %v", err)
	}
	if !strings.Contains(buf.String(), "No forecast stored yet") {
		t.Error("partial output missing empty-state message")
	}
}
