package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"tenderdocs/testhelpers"
)

func TestHandleTCBPaperPDF(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	approach := testhelpers.CreateTestApproach(t, app, "Balanced", 60, 10, 30, `{"Excellent":"90-100"}`)
	p := testhelpers.CreateTestProject(t, app, "Bridge Works")
	p.Set("evaluation_approach", approach.Id)
	if err := app.Save(p); err != nil {
		t.Fatal(err)
	}
	testhelpers.CreateTestSubmission(t, app, p.Id, 1, "Acme", 5, "positive")

	req := httptest.NewRequest(http.MethodGet, "/projects/"+p.Id+"/tcb-paper/pdf", nil)
	req.SetPathValue("id", p.Id)
	rec := httptest.NewRecorder()

	if err := HandleTCBPaperPDF(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="Bridge-Works_TCB_Paper.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("response is not a PDF")
	}
}

func TestHandleTCBPaperPDF_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/projects/missing/tcb-paper/pdf", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	if err := HandleTCBPaperPDF(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
