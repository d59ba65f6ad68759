package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleProjectActivate sets the active project cookie and answers with
// HX-Redirect so the whole shell (header and sidebar) re-renders.
func HandleProjectActivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		http.SetCookie(e.Response, &http.Cookie{
			Name:     activeProjectCookie,
			Value:    projectID,
			Path:     "/",
			MaxAge:   60 * 60 * 24 * 30,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		SetToast(e, "success", "Project activated")

		e.Response.Header().Set("HX-Redirect", "/projects/"+projectID)
		return e.String(http.StatusOK, "OK")
	}
}

// HandleProjectDeactivate clears the active project cookie and redirects to /projects.
func HandleProjectDeactivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		clearActiveProjectCookie(e.Response)
		SetToast(e, "success", "Project deactivated")

		e.Response.Header().Set("HX-Redirect", "/projects")
		return e.String(http.StatusOK, "OK")
	}
}
