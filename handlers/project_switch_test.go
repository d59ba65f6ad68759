package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tenderdocs/testhelpers"
)

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHandleProjectActivate_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Activate Me")

	req := httptest.NewRequest(http.MethodPost, "/projects/"+proj.Id+"/activate", nil)
	req.SetPathValue("id", proj.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectActivate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/projects/"+proj.Id)

	c := findCookie(rec, "active_project")
	if c == nil || c.Value != proj.Id {
		t.Fatalf("expected active_project cookie %q, got %+v", proj.Id, c)
	}
	if !c.HttpOnly {
		t.Error("expected active_project cookie to be HttpOnly")
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "Project activated") {
		t.Errorf("HX-Trigger = %q", rec.Header().Get("HX-Trigger"))
	}
}

func TestHandleProjectActivate_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/projects/nonexistent/activate", nil)
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()

	if err := HandleProjectActivate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if findCookie(rec, "active_project") != nil {
		t.Error("cookie should not be set for a missing project")
	}
}

func TestHandleProjectDeactivate_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/projects/deactivate", nil)
	rec := httptest.NewRecorder()

	if err := HandleProjectDeactivate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/projects")

	if c := findCookie(rec, "active_project"); c == nil || c.MaxAge != -1 {
		t.Errorf("expected active_project cookie to be cleared, got %+v", c)
	}
}
