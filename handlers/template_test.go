package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tenderdocs/testhelpers"
)

func TestHandleTemplateList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestTemplate(t, app, "TCB Cover", "<p>{{project.name}} {{customer.Name}}</p>")
	testhelpers.CreateTestTemplate(t, app, "Award Letter", "<p>{{project.name}}</p>")

	req := httptest.NewRequest(http.MethodGet, "/templates", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTemplateList(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "TCB Cover", "Award Letter")
	testhelpers.AssertHTMLNotContains(t, rec.Body.String(), "<!doctype html>")
}

func TestHandleTemplateSave_Valid(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{"name": {"TCB Cover"}, "template_text": {"<p>{{project.name}}</p>"}}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, postForm("/templates", form), rec)

	if err := HandleTemplateSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	records, err := app.FindRecordsByFilter("templates", "name = 'TCB Cover'", "", 0, 0)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one saved template, got %d (%v)", len(records), err)
	}
	if got := records[0].GetString("template_text"); got != "<p>{{project.name}}</p>" {
		t.Errorf("template_text = %q", got)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/templates/"+records[0].Id)
}

func TestHandleTemplateSave_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestTemplate(t, app, "Existing", "<p>x</p>")

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing name", url.Values{"template_text": {"<p>x</p>"}}, "Template name is required"},
		{"duplicate name", url.Values{"name": {"Existing"}, "template_text": {"<p>x</p>"}}, "A template with this name already exists"},
		{"no content", url.Values{"name": {"Empty"}}, "Enter template text or upload a source document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, postForm("/templates", tt.form), rec)

			if err := HandleTemplateSave(app)(e); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Header().Get("HX-Redirect") != "" {
				t.Error("invalid form should not redirect")
			}
			testhelpers.AssertHTMLContains(t, rec.Body.String(), tt.want)
		})
	}

	count, _ := app.CountRecords("templates")
	if count != 1 {
		t.Errorf("expected 1 template after rejected saves, got %d", count)
	}
}

func TestHandleTemplateSave_FileUpload(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("name", "Uploaded")
	part, err := w.CreateFormFile("source_file", "cover.txt")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("Tender {{project.name}}"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/templates", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTemplateSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	records, _ := app.FindRecordsByFilter("templates", "name = 'Uploaded'", "", 0, 0)
	if len(records) != 1 {
		t.Fatalf("expected uploaded template to be saved, body: %s", rec.Body.String())
	}
	if records[0].GetString("source_file") == "" {
		t.Fatal("expected source_file to be stored")
	}

	dreq := httptest.NewRequest(http.MethodGet, "/templates/"+records[0].Id+"/download", nil)
	dreq.SetPathValue("id", records[0].Id)
	drec := httptest.NewRecorder()
	if err := HandleTemplateDownload(app)(newTestRequestEvent(app, dreq, drec)); err != nil {
		t.Fatalf("download returned error: %v", err)
	}
	if drec.Body.String() != "Tender {{project.name}}" {
		t.Errorf("download body = %q", drec.Body.String())
	}
	if !strings.HasPrefix(drec.Header().Get("Content-Disposition"), "attachment;") {
		t.Errorf("Content-Disposition = %q", drec.Header().Get("Content-Disposition"))
	}
}

func TestHandleTemplateSave_RejectsExtension(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("name", "Bad")
	part, _ := w.CreateFormFile("source_file", "cover.exe")
	part.Write([]byte("MZ"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/templates", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTemplateSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Upload a .docx, .xlsx, .html or .txt file")
}

func TestHandleTemplateView(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tmpl := testhelpers.CreateTestTemplate(t, app, "TCB Cover", "<p>{{project.name}} {{tender_submissions_table}}</p>")
	testhelpers.CreateTestProject(t, app, "Bridge Works")

	req := httptest.NewRequest(http.MethodGet, "/templates/"+tmpl.Id, nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", tmpl.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTemplateView(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"TCB Cover",
		"project.name",
		"tender_submissions_table",
		"Bridge Works",
	)
}

func TestHandleTemplateView_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/templates/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTemplateView(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleTemplateEdit(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tmpl := testhelpers.CreateTestTemplate(t, app, "TCB Cover", "<p>x</p>")

	req := httptest.NewRequest(http.MethodGet, "/templates/"+tmpl.Id+"/edit", nil)
	req.SetPathValue("id", tmpl.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTemplateEdit(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `hx-post="/templates/`+tmpl.Id+`/save"`, "TCB Cover")
}

func TestHandleTemplateUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tmpl := testhelpers.CreateTestTemplate(t, app, "TCB Cover", "<p>old</p>")

	form := url.Values{"name": {"TCB Cover v2"}, "template_text": {"<p>new</p>"}}
	req := postForm("/templates/"+tmpl.Id+"/save", form)
	req.SetPathValue("id", tmpl.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTemplateUpdate(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/templates/"+tmpl.Id)

	updated, err := app.FindRecordById("templates", tmpl.Id)
	if err != nil {
		t.Fatal(err)
	}
	if updated.GetString("name") != "TCB Cover v2" || updated.GetString("template_text") != "<p>new</p>" {
		t.Errorf("record not updated: %q %q", updated.GetString("name"), updated.GetString("template_text"))
	}
}

func TestHandleTemplateUpdate_KeepsOwnName(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tmpl := testhelpers.CreateTestTemplate(t, app, "TCB Cover", "<p>old</p>")

	form := url.Values{"name": {"TCB Cover"}, "template_text": {"<p>new</p>"}}
	req := postForm("/templates/"+tmpl.Id+"/save", form)
	req.SetPathValue("id", tmpl.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTemplateUpdate(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLNotContains(t, rec.Body.String(), "already exists")
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/templates/"+tmpl.Id)
}

func TestHandleTemplateDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tmpl := testhelpers.CreateTestTemplate(t, app, "TCB Cover", "<p>x</p>")

	req := httptest.NewRequest(http.MethodDelete, "/templates/"+tmpl.Id, nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", tmpl.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTemplateDelete(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/templates")

	if _, err := app.FindRecordById("templates", tmpl.Id); err == nil {
		t.Error("expected template to be deleted")
	}
}

func TestHandleTemplateDelete_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodDelete, "/templates/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTemplateDelete(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("expected HX-Reswap: none on error")
	}
}

func TestHandleTemplateDownload_NoFile(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tmpl := testhelpers.CreateTestTemplate(t, app, "Text only", "<p>x</p>")

	req := httptest.NewRequest(http.MethodGet, "/templates/"+tmpl.Id+"/download", nil)
	req.SetPathValue("id", tmpl.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTemplateDownload(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
