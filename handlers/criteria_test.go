package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tenderdocs/services"
	"tenderdocs/testhelpers"
)

func TestHandleCriteriaList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestCriterion(t, app, "Safety Record", "Past incidents", "5: no incidents\n0: fatal incident")
	testhelpers.CreateTestCriterion(t, app, "Delivery <Time>", "", "Days late deduct one point")

	req := httptest.NewRequest(http.MethodGet, "/evaluation-criteria", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	if err := HandleCriteriaList(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, `id="criteria-list"`, "Safety Record", "Delivery &lt;Time&gt;", "5: no incidents")
	testhelpers.AssertHTMLNotContains(t, body, "<Time>", "<html")
	if strings.Index(body, "Delivery") > strings.Index(body, "Safety Record") {
		t.Error("expected criteria ordered by name")
	}
}

func TestHandleCriteriaList_Empty(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/evaluation-criteria", nil)
	rec := httptest.NewRecorder()

	if err := HandleCriteriaList(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "<html", "No evaluation criteria defined.")
}

func TestHandleCriterionSave(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{
		"name":                         {"  Safety Record  "},
		"description":                  {"Past incidents"},
		"detailed_scoring_methodology": {"5: no incidents\n0: fatal incident"},
	}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, postForm("/evaluation-criteria", form), rec)

	if err := HandleCriterionSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/evaluation-criteria")
	testhelpers.AssertHTMLContains(t, rec.Header().Get("HX-Trigger"), "Evaluation criterion created")

	records, err := app.FindRecordsByFilter("evaluation_criteria", "name = 'Safety Record'", "", 0, 0)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one criterion, got %d (%v)", len(records), err)
	}
	c := services.CriterionFromRecord(records[0])
	if c.DetailedScoringMethodology != "5: no incidents\n0: fatal incident" {
		t.Errorf("methodology = %q", c.DetailedScoringMethodology)
	}
}

func TestHandleCriterionSave_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestCriterion(t, app, "Existing", "", "Some method")

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing name", url.Values{"detailed_scoring_methodology": {"m"}}, "Name is required"},
		{"missing methodology", url.Values{"name": {"X"}, "detailed_scoring_methodology": {"   "}}, "Detailed scoring methodology is required"},
		{"duplicate", url.Values{"name": {"Existing"}, "detailed_scoring_methodology": {"m"}}, "An evaluation criteria with this name already exists"},
		{"name too long", url.Values{"name": {strings.Repeat("n", 201)}, "detailed_scoring_methodology": {"m"}}, "Name must be at most 200 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, postForm("/evaluation-criteria", tt.form), rec)

			if err := HandleCriterionSave(app)(e); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Header().Get("HX-Redirect") != "" {
				t.Error("invalid form should not redirect")
			}
			testhelpers.AssertHTMLContains(t, rec.Body.String(), tt.want)
		})
	}

	count, _ := app.CountRecords("evaluation_criteria")
	if count != 1 {
		t.Errorf("expected only the seeded criterion, got %d", count)
	}
}

func TestHandleCriterionEdit(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	c := testhelpers.CreateTestCriterion(t, app, "Safety Record", "Past incidents", "5: no incidents")

	req := httptest.NewRequest(http.MethodGet, "/evaluation-criteria/"+c.Id+"/edit", nil)
	req.SetPathValue("id", c.Id)
	rec := httptest.NewRecorder()

	if err := HandleCriterionEdit(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"Edit Evaluation Criterion",
		`value="Safety Record"`,
		"/evaluation-criteria/"+c.Id+"/save",
		"5: no incidents",
	)
}

func TestHandleCriterionUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	c := testhelpers.CreateTestCriterion(t, app, "Safety Record", "", "old")
	other := testhelpers.CreateTestCriterion(t, app, "Delivery", "", "days")

	t.Run("keeps own name", func(t *testing.T) {
		form := url.Values{"name": {"Safety Record"}, "detailed_scoring_methodology": {"new"}}
		req := postForm("/evaluation-criteria/"+c.Id+"/save", form)
		req.SetPathValue("id", c.Id)
		rec := httptest.NewRecorder()

		if err := HandleCriterionUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/evaluation-criteria")
		updated, _ := app.FindRecordById("evaluation_criteria", c.Id)
		if got := updated.GetString("detailed_scoring_methodology"); got != "new" {
			t.Errorf("methodology = %q", got)
		}
	})

	t.Run("rename onto another criterion", func(t *testing.T) {
		form := url.Values{"name": {"Delivery"}, "detailed_scoring_methodology": {"x"}}
		req := postForm("/evaluation-criteria/"+c.Id+"/save", form)
		req.SetPathValue("id", c.Id)
		rec := httptest.NewRecorder()

		if err := HandleCriterionUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		testhelpers.AssertHTMLContains(t, rec.Body.String(), "An evaluation criteria with this name already exists")
		if _, err := app.FindRecordById("evaluation_criteria", other.Id); err != nil {
			t.Error("other criterion should be untouched")
		}
	})
}

func TestHandleCriterionDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	c := testhelpers.CreateTestCriterion(t, app, "Safety Record", "", "m")

	req := httptest.NewRequest(http.MethodDelete, "/evaluation-criteria/"+c.Id, nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", c.Id)
	rec := httptest.NewRecorder()

	if err := HandleCriterionDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/evaluation-criteria")
	if _, err := app.FindRecordById("evaluation_criteria", c.Id); err == nil {
		t.Error("expected criterion to be deleted")
	}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleCriteriaAPI(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestCriterion(t, app, "Zeta", "", "z")
	testhelpers.CreateTestCriterion(t, app, "Alpha", "first", "a")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/evaluation-criteria", nil)
	if err := HandleCriteriaAPI(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var resp struct {
		EvaluationCriteria []criterionJSON `json:"evaluationCriteria"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.EvaluationCriteria) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(resp.EvaluationCriteria))
	}
	if resp.EvaluationCriteria[0].Name != "Alpha" || resp.EvaluationCriteria[0].Description != "first" {
		t.Errorf("first = %+v", resp.EvaluationCriteria[0])
	}
}

func TestHandleCriterionAPICreate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestCriterion(t, app, "Existing", "", "m")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"created", `{"name":"Quality","detailed_scoring_methodology":"0-10"}`, http.StatusCreated, ""},
		{"missing name", `{"detailed_scoring_methodology":"0-10"}`, http.StatusBadRequest, "Name is required"},
		{"missing methodology", `{"name":"Other"}`, http.StatusBadRequest, "Detailed scoring methodology is required"},
		{"duplicate", `{"name":"Existing","detailed_scoring_methodology":"0-10"}`, http.StatusConflict, "An evaluation criteria with this name already exists"},
		{"duplicate without methodology", `{"name":"Existing"}`, http.StatusBadRequest, "Detailed scoring methodology is required"},
		{"bad json", `{`, http.StatusBadRequest, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := jsonRequest(http.MethodPost, "/api/evaluation-criteria", tt.body)
			if err := HandleCriterionAPICreate(app)(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantError != "" {
				testhelpers.AssertHTMLContains(t, rec.Body.String(), tt.wantError)
				return
			}
			var resp struct {
				EvaluationCriteria criterionJSON `json:"evaluationCriteria"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if resp.EvaluationCriteria.ID == "" || resp.EvaluationCriteria.Name != "Quality" {
				t.Errorf("created = %+v", resp.EvaluationCriteria)
			}
		})
	}
}

func TestHandleCriterionAPI_ByID(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	c := testhelpers.CreateTestCriterion(t, app, "Quality", "", "0-10")
	testhelpers.CreateTestCriterion(t, app, "Price", "", "lowest wins")

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/evaluation-criteria/"+c.Id, nil)
		req.SetPathValue("id", c.Id)
		rec := httptest.NewRecorder()
		if err := HandleCriterionAPIGet(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		testhelpers.AssertHTMLContains(t, rec.Body.String(), `"name":"Quality"`)
	})

	t.Run("get missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/evaluation-criteria/nope", nil)
		req.SetPathValue("id", "nope")
		rec := httptest.NewRecorder()
		if err := HandleCriterionAPIGet(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		testhelpers.AssertHTMLContains(t, rec.Body.String(), "Evaluation criteria not found")
	})

	t.Run("update onto existing name", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, "/api/evaluation-criteria/"+c.Id, `{"name":"Price","detailed_scoring_methodology":"x"}`)
		req.SetPathValue("id", c.Id)
		rec := httptest.NewRecorder()
		if err := HandleCriterionAPIUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("update", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, "/api/evaluation-criteria/"+c.Id, `{"name":"Quality","description":"d","detailed_scoring_methodology":"1-5"}`)
		req.SetPathValue("id", c.Id)
		rec := httptest.NewRecorder()
		if err := HandleCriterionAPIUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
		}
		updated, _ := app.FindRecordById("evaluation_criteria", c.Id)
		if updated.GetString("detailed_scoring_methodology") != "1-5" || updated.GetString("description") != "d" {
			t.Errorf("record not updated: %v", updated.PublicExport())
		}
	})

	t.Run("delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/evaluation-criteria/"+c.Id, nil)
		req.SetPathValue("id", c.Id)
		rec := httptest.NewRecorder()
		if err := HandleCriterionAPIDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		testhelpers.AssertHTMLContains(t, rec.Body.String(), "Evaluation criteria deleted successfully")
		if _, err := app.FindRecordById("evaluation_criteria", c.Id); err == nil {
			t.Error("expected criterion to be deleted")
		}
	})
}
