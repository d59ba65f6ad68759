package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"

	"tenderdocs/templates"
)

// BuildSidebarData constructs the SidebarData for the current request: the
// template count always, and the submission count and approach name of the
// active project when there is one.
func BuildSidebarData(r *http.Request, app *pocketbase.PocketBase) templates.SidebarData {
	data := templates.SidebarData{
		ActivePath: r.URL.Path,
	}

	if n, err := app.CountRecords("templates"); err == nil {
		data.TemplateCount = int(n)
	}

	activeProj := GetActiveProject(r)
	if activeProj == nil {
		return data
	}
	data.ActiveProject = activeProj

	submissions, err := app.FindRecordsByFilter(
		"tender_submissions",
		"project = {:pid}",
		"", 0, 0,
		map[string]any{"pid": activeProj.ID},
	)
	if err == nil {
		data.SubmissionCount = len(submissions)
	}

	projRec, err := app.FindRecordById("projects", activeProj.ID)
	if err == nil {
		if approachID := projRec.GetString("evaluation_approach"); approachID != "" {
			if approach, err := app.FindRecordById("evaluation_approaches", approachID); err == nil {
				data.ApproachName = approach.GetString("name")
			}
		}
	}

	return data
}
