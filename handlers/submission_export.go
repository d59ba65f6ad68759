package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
)

// HandleSubmissionExport downloads a project's tender submissions as .xlsx.
func HandleSubmissionExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		project, err := services.LoadProjectData(app, projectID)
		if errors.Is(err, services.ErrProjectNotFound) {
			return e.String(http.StatusNotFound, "Project not found")
		}
		if err != nil {
			log.Printf("submission_export: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load project")
		}

		data, err := services.GenerateTenderExcel(project)
		if err != nil {
			log.Printf("submission_export: generate excel for %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := sanitizeFilename(project.Name) + "_Submissions.xlsx"
		e.Response.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(data)
		return nil
	}
}
