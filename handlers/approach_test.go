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

func TestHandleApproachList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	balanced := testhelpers.CreateTestApproach(t, app, "Balanced", 60, 10, 30, `{"Excellent":"90-100","Good":"70-89"}`)
	testhelpers.CreateTestApproach(t, app, "Lopsided", 60, 20, 30, "")
	project := testhelpers.CreateTestProject(t, app, "Bridge")
	project.Set("evaluation_approach", balanced.Id)
	if err := app.Save(project); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/evaluation-approaches", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleApproachList(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "Balanced", "Lopsided", "100%", "110%")
	if strings.Index(body, "Balanced") > strings.Index(body, "Lopsided") {
		t.Error("expected approaches ordered by name")
	}
}

func TestHandleApproachSave(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{
		"name":                 {"Balanced"},
		"price_percentage":     {"60"},
		"safety_percentage":    {"10"},
		"technical_percentage": {"30"},
		"technical_criteria":   {"Excellent: 90-100\nGood: 70-89"},
	}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, postForm("/evaluation-approaches", form), rec)

	if err := HandleApproachSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/evaluation-approaches")
	testhelpers.AssertHTMLContains(t, rec.Header().Get("HX-Trigger"), "Evaluation approach created")

	records, err := app.FindRecordsByFilter("evaluation_approaches", "name = 'Balanced'", "", 0, 0)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one approach, got %d (%v)", len(records), err)
	}
	approach := services.ApproachFromRecord(records[0])
	if approach.PricePercentage != 60 || approach.SafetyPercentage != 10 || approach.TechnicalPercentage != 30 {
		t.Errorf("weights = %v/%v/%v", approach.PricePercentage, approach.SafetyPercentage, approach.TechnicalPercentage)
	}
	if len(approach.TechnicalCriteria) != 2 || approach.TechnicalCriteria[0].Label != "Excellent" {
		t.Errorf("criteria = %+v", approach.TechnicalCriteria)
	}
}

func TestHandleApproachSave_TotalWarning(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{
		"name":                 {"Heavy"},
		"price_percentage":     {"60"},
		"safety_percentage":    {"20"},
		"technical_percentage": {"30"},
	}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, postForm("/evaluation-approaches", form), rec)

	if err := HandleApproachSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/evaluation-approaches")
	testhelpers.AssertHTMLContains(t, rec.Header().Get("HX-Trigger"), "weights total 110%", `"type":"warning"`)

	count, _ := app.CountRecords("evaluation_approaches")
	if count != 1 {
		t.Errorf("expected approach to be saved despite total, got %d", count)
	}
}

func TestHandleApproachSave_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestApproach(t, app, "Existing", 50, 0, 50, "")

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing name", url.Values{"price_percentage": {"100"}}, "Approach name is required"},
		{"duplicate", url.Values{"name": {"Existing"}}, "An approach with this name already exists"},
		{"out of range", url.Values{"name": {"X"}, "price_percentage": {"150"}}, "Price must be a number between 0 and 100"},
		{"not a number", url.Values{"name": {"X"}, "safety_percentage": {"lots"}}, "Safety must be a number between 0 and 100"},
		{"NaN", url.Values{"name": {"X"}, "technical_percentage": {"NaN"}}, "Technical must be a number between 0 and 100"},
		{"infinite", url.Values{"name": {"X"}, "price_percentage": {"-Inf"}}, "Price must be a number between 0 and 100"},
		{"band without label", url.Values{"name": {"X"}, "technical_criteria": {": no label"}}, "Every criteria line needs a label"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, postForm("/evaluation-approaches", tt.form), rec)

			if err := HandleApproachSave(app)(e); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Header().Get("HX-Redirect") != "" {
				t.Error("invalid form should not redirect")
			}
			testhelpers.AssertHTMLContains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestHandleApproachEdit(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	approach := testhelpers.CreateTestApproach(t, app, "Balanced", 62.5, 7.5, 30, `{"Excellent":"90-100"}`)

	req := httptest.NewRequest(http.MethodGet, "/evaluation-approaches/"+approach.Id+"/edit", nil)
	req.SetPathValue("id", approach.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleApproachEdit(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `value="62.5"`, `value="7.5"`, "Excellent: 90-100")
}

func TestHandleApproachUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	approach := testhelpers.CreateTestApproach(t, app, "Balanced", 60, 10, 30, "")

	form := url.Values{
		"name":                 {"Balanced"},
		"price_percentage":     {"50"},
		"safety_percentage":    {"20"},
		"technical_percentage": {"30"},
	}
	req := postForm("/evaluation-approaches/"+approach.Id+"/save", form)
	req.SetPathValue("id", approach.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleApproachUpdate(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/evaluation-approaches")

	updated, _ := app.FindRecordById("evaluation_approaches", approach.Id)
	if updated.GetFloat("price_percentage") != 50 || updated.GetFloat("safety_percentage") != 20 {
		t.Errorf("weights not updated: %v %v", updated.GetFloat("price_percentage"), updated.GetFloat("safety_percentage"))
	}
}

func TestHandleApproachDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	used := testhelpers.CreateTestApproach(t, app, "Used", 60, 10, 30, "")
	unused := testhelpers.CreateTestApproach(t, app, "Unused", 60, 10, 30, "")
	project := testhelpers.CreateTestProject(t, app, "Bridge")
	project.Set("evaluation_approach", used.Id)
	if err := app.Save(project); err != nil {
		t.Fatal(err)
	}

	t.Run("referenced approach is refused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/evaluation-approaches/"+used.Id, nil)
		req.SetPathValue("id", used.Id)
		rec := httptest.NewRecorder()

		if err := HandleApproachDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
		if _, err := app.FindRecordById("evaluation_approaches", used.Id); err != nil {
			t.Error("referenced approach should still exist")
		}
	})

	t.Run("unused approach is deleted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/evaluation-approaches/"+unused.Id, nil)
		req.Header.Set("HX-Request", "true")
		req.SetPathValue("id", unused.Id)
		rec := httptest.NewRecorder()

		if err := HandleApproachDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/evaluation-approaches")
		if _, err := app.FindRecordById("evaluation_approaches", unused.Id); err == nil {
			t.Error("expected approach to be deleted")
		}
	})
}

func TestHandleApproachAPI(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestApproach(t, app, "Zeta", 100, 0, 0, "")
	testhelpers.CreateTestApproach(t, app, "Alpha", 60, 10, 30, `{"Excellent":"90-100","Good":"70-89"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/evaluation-approaches", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleApproachAPI(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Approaches []struct {
			Name              string          `json:"name"`
			PricePercentage   float64         `json:"price_percentage"`
			TechnicalCriteria json.RawMessage `json:"technical_criteria"`
		} `json:"approaches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Approaches) != 2 {
		t.Fatalf("expected 2 approaches, got %d", len(resp.Approaches))
	}
	if resp.Approaches[0].Name != "Alpha" || resp.Approaches[1].Name != "Zeta" {
		t.Errorf("order = %s, %s", resp.Approaches[0].Name, resp.Approaches[1].Name)
	}
	if got := string(resp.Approaches[0].TechnicalCriteria); got != `{"Excellent":"90-100","Good":"70-89"}` {
		t.Errorf("criteria = %s", got)
	}
	if got := string(resp.Approaches[1].TechnicalCriteria); got != "null" {
		t.Errorf("empty criteria = %s", got)
	}
}
