package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tenderdocs/collections"
	"tenderdocs/services"
	"tenderdocs/templates"
	"tenderdocs/testhelpers"
)

func TestHandleProjectList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	approach := testhelpers.CreateTestApproach(t, app, "Balanced", 60, 10, 30, "")
	p := testhelpers.CreateTestProject(t, app, "Bridge Works")
	p.Set("evaluation_approach", approach.Id)
	if err := app.Save(p); err != nil {
		t.Fatal(err)
	}
	testhelpers.CreateTestSubmission(t, app, p.Id, 1, "Acme", 5, "positive")
	testhelpers.CreateTestProject(t, app, "Road Resurfacing")

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleProjectList(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"Bridge Works",
		"Road Resurfacing",
		"Balanced",
		"31 Mar 2025",
	)
}

func TestHandleProjectSave(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	approach := testhelpers.CreateTestApproach(t, app, "Balanced", 60, 10, 30, "")

	form := url.Values{
		"name":                {"Bridge Works"},
		"client_name":         {"City Council"},
		"document_no":         {"DOC-7"},
		"closing_date":        {"2025-03-31"},
		"suppliers_count":     {"4"},
		"status":              {"in evaluation"},
		"evaluation_approach": {approach.Id},
		"parameters":          {`{"site":"North Yard"}`},
	}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, postForm("/projects", form), rec)

	if err := HandleProjectSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	records, err := app.FindRecordsByFilter("projects", "name = 'Bridge Works'", "", 0, 0)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one project, got %d (%v)", len(records), err)
	}
	p := records[0]
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/projects/"+p.Id)

	if p.GetString("status") != "in evaluation" {
		t.Errorf("status = %q", p.GetString("status"))
	}
	if p.GetInt("suppliers_count") != 4 {
		t.Errorf("suppliers_count = %d", p.GetInt("suppliers_count"))
	}
	if p.GetString("evaluation_approach") != approach.Id {
		t.Errorf("evaluation_approach = %q", p.GetString("evaluation_approach"))
	}
	if !strings.Contains(p.GetString("parameters"), "North Yard") {
		t.Errorf("parameters = %q", p.GetString("parameters"))
	}
}

func TestHandleProjectSave_DefaultsStatus(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{"name": {"Bridge Works"}, "status": {"bogus"}}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, postForm("/projects", form), rec)

	if err := HandleProjectSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	records, _ := app.FindRecordsByFilter("projects", "name = 'Bridge Works'", "", 0, 0)
	if len(records) != 1 {
		t.Fatalf("expected project to be saved, body: %s", rec.Body.String())
	}
	if got := records[0].GetString("status"); got != collections.DefaultProjectStatus {
		t.Errorf("status = %q, want %q", got, collections.DefaultProjectStatus)
	}
}

func TestHandleProjectSave_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestProject(t, app, "Existing")

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing name", url.Values{"client_name": {"X"}}, "Project name is required"},
		{"duplicate", url.Values{"name": {"Existing"}}, "A project with this name already exists"},
		{"negative suppliers", url.Values{"name": {"P"}, "suppliers_count": {"-1"}}, "Suppliers invited must be a whole number"},
		{"parameters not an object", url.Values{"name": {"P"}, "parameters": {"[1,2]"}}, "Extra parameters must be a JSON object"},
		{"unknown approach", url.Values{"name": {"P"}, "evaluation_approach": {"nope"}}, "Selected evaluation approach no longer exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, postForm("/projects", tt.form), rec)

			if err := HandleProjectSave(app)(e); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Header().Get("HX-Redirect") != "" {
				t.Error("invalid form should not redirect")
			}
			testhelpers.AssertHTMLContains(t, rec.Body.String(), tt.want)
		})
	}

	count, _ := app.CountRecords("projects")
	if count != 1 {
		t.Errorf("expected 1 project after rejected saves, got %d", count)
	}
}

func TestHandleProjectEdit(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	p := testhelpers.CreateTestProject(t, app, "Bridge Works")

	req := httptest.NewRequest(http.MethodGet, "/projects/"+p.Id+"/edit", nil)
	req.SetPathValue("id", p.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleProjectEdit(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`hx-post="/projects/`+p.Id+`/save"`,
		`value="Bridge Works"`,
		`value="2025-03-31"`,
	)
}

func TestHandleProjectUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	p := testhelpers.CreateTestProject(t, app, "Bridge Works")

	form := url.Values{
		"name":        {"Bridge Works Phase 2"},
		"client_name": {"Harbour Board"},
		"status":      {"completed"},
	}
	req := postForm("/projects/"+p.Id+"/save", form)
	req.SetPathValue("id", p.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleProjectUpdate(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/projects/"+p.Id)

	updated, _ := app.FindRecordById("projects", p.Id)
	if updated.GetString("name") != "Bridge Works Phase 2" || updated.GetString("client_name") != "Harbour Board" {
		t.Errorf("project not updated: %q / %q", updated.GetString("name"), updated.GetString("client_name"))
	}
	if updated.GetString("status") != "completed" {
		t.Errorf("status = %q", updated.GetString("status"))
	}
}

func TestHandleProjectView(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	approach := testhelpers.CreateTestApproach(t, app, "Balanced", 60, 10, 30, `{"Excellent":"90-100"}`)
	p := testhelpers.CreateTestProject(t, app, "Bridge Works")
	p.Set("evaluation_approach", approach.Id)
	if err := app.Save(p); err != nil {
		t.Fatal(err)
	}
	testhelpers.CreateTestSubmission(t, app, p.Id, 1, "Low Bidder", 2, "negative")
	testhelpers.CreateTestSubmission(t, app, p.Id, 2, "High Bidder", 8, "positive")
	testhelpers.CreateTestTemplate(t, app, "TCB Cover", "<p>x</p>")

	req := httptest.NewRequest(http.MethodGet, "/projects/"+p.Id, nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", p.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleProjectView(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"Bridge Works",
		"Balanced",
		"Low Bidder",
		"High Bidder",
		"(+) 8%",
		"(-) 2%",
		"TCB Cover",
	)
	testhelpers.AssertHTMLNotContains(t, body, "No evaluation approach selected.")
}

func TestHandleProjectView_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/projects/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleProjectView(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestBuildSubmissionsData_Ranks(t *testing.T) {
	rows := []services.TenderSubmission{
		{ID: "a", SupplierName: "A", PercentageAdjustment: 1, PercentageSign: services.ParseSign("positive")},
		{ID: "b", SupplierName: "B", PercentageAdjustment: 9, PercentageSign: services.ParseSign("positive")},
		{ID: "c", SupplierName: "C", PercentageAdjustment: 5, PercentageSign: services.ParseSign("negative")},
	}

	data := buildSubmissionsData("p1", rows)

	wantRanks := map[string]int{"a": 3, "b": 1, "c": 2}
	for i, r := range data.Rows {
		if r.SortOrder != i+1 {
			t.Errorf("row %s SortOrder = %d, want %d", r.ID, r.SortOrder, i+1)
		}
		if r.Rank != wantRanks[r.ID] {
			t.Errorf("row %s Rank = %d, want %d", r.ID, r.Rank, wantRanks[r.ID])
		}
	}
}

func TestHandleProjectDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	p := testhelpers.CreateTestProject(t, app, "Bridge Works")
	testhelpers.CreateTestSubmission(t, app, p.Id, 1, "Acme", 5, "positive")
	testhelpers.CreateTestSubmission(t, app, p.Id, 2, "Globex", 3, "negative")

	req := httptest.NewRequest(http.MethodDelete, "/projects/"+p.Id, nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", p.Id)
	ctx := context.WithValue(req.Context(), ActiveProjectKey, &templates.ActiveProject{ID: p.Id, Name: "Bridge Works"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleProjectDelete(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/projects")

	if _, err := app.FindRecordById("projects", p.Id); err == nil {
		t.Error("expected project to be deleted")
	}
	remaining, _ := app.FindRecordsByFilter("tender_submissions", "project = {:p}", "", 0, 0, map[string]any{"p": p.Id})
	if len(remaining) != 0 {
		t.Errorf("expected submissions to cascade, %d remain", len(remaining))
	}
	if c := findCookie(rec, activeProjectCookie); c == nil || c.MaxAge >= 0 {
		t.Error("expected active project cookie to be cleared")
	}
}

func TestHandleProjectSettings(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	p := testhelpers.CreateTestProject(t, app, "Bridge Works")

	req := httptest.NewRequest(http.MethodGet, "/projects/"+p.Id+"/settings", nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", p.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleProjectSettings(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		`value="serial" checked>`,
		`value="supplier_name" checked>`,
		`value="percentage" checked>`,
		`value="remarks">`,
	)
}

func TestHandleProjectSettingsSave(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	p := testhelpers.CreateTestProject(t, app, "Bridge Works")

	// Submitted out of order; stored in table order. Unknown keys are dropped.
	form := url.Values{"columns": {"remarks", "supplier_name", "bogus", "serial"}}
	req := postForm("/projects/"+p.Id+"/settings", form)
	req.SetPathValue("id", p.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleProjectSettingsSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/projects/"+p.Id)

	updated, _ := app.FindRecordById("projects", p.Id)
	got := services.ProjectTenderColumns(updated)
	want := []services.TenderColumn{services.ColumnSerial, services.ColumnSupplierName, services.ColumnRemarks}
	if len(got) != len(want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("columns[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Ticking nothing restores the default layout.
	req = postForm("/projects/"+p.Id+"/settings", url.Values{})
	req.SetPathValue("id", p.Id)
	rec = httptest.NewRecorder()
	if err := HandleProjectSettingsSave(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	updated, _ = app.FindRecordById("projects", p.Id)
	if got := services.ProjectTenderColumns(updated); len(got) != len(services.DefaultTenderColumns) {
		t.Errorf("columns after reset = %v", got)
	}
}
