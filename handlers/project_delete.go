package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleProjectDelete removes a project. Its tender submissions go with it
// through the relation's cascade delete.
func HandleProjectDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		projectRecord, err := app.FindRecordById("projects", projectID)
		if err != nil {
			log.Printf("project_delete: could not find project %s: %v", projectID, err)
			return e.String(http.StatusNotFound, "Project not found")
		}

		submissions, _ := app.FindRecordsByFilter(
			"tender_submissions",
			"project = {:projectId}",
			"", 0, 0,
			map[string]any{"projectId": projectID},
		)

		if err := app.Delete(projectRecord); err != nil {
			log.Printf("project_delete: failed to delete project %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Failed to delete project")
		}

		log.Printf("project_delete: deleted project %s (submission_count=%d)", projectID, len(submissions))

		if active := GetActiveProject(e.Request); active != nil && active.ID == projectID {
			clearActiveProjectCookie(e.Response)
		}

		SetToast(e, "success", "Project deleted")
		return redirect(e, "/projects")
	}
}
