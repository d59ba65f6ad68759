package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

// HandleSubmissionImportValidate parses an uploaded .csv or .xlsx file and
// returns the validation results as an HTMX partial.
// Route: POST /projects/{id}/submissions/import
func HandleSubmissionImportValidate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ParseTenderFile(file, header.Filename)
		if err != nil {
			log.Printf("submission_import: %v", err)
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		var rowsJSON string
		if len(result.Rows) > 0 {
			rowsJSON, err = services.EncodeSubmissions(result.Rows)
			if err != nil {
				log.Printf("submission_import: %v", err)
				rowsJSON = ""
			}
		}

		return templates.ImportResult(projectID, result, rowsJSON).Render(e.Request.Context(), e.Response)
	}
}

// HandleSubmissionImportCommit saves the rows carried over from the validate
// step, appending to or replacing the project's submissions.
// Route: POST /projects/{id}/submissions/import/commit
func HandleSubmissionImportCommit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		parsedJSON := e.Request.FormValue("parsed_rows_json")
		if parsedJSON == "" {
			return ErrorToast(e, http.StatusBadRequest,
				"File data missing. Please re-upload and try again.")
		}

		rows, err := services.DecodeSubmissions(parsedJSON)
		if err != nil {
			log.Printf("submission_import_commit: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "Invalid parsed data")
		}

		replace := e.Request.FormValue("replace") == "true"
		n, err := services.CommitTenderImport(app, projectID, rows, replace)
		if err != nil {
			log.Printf("submission_import_commit: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", fmt.Sprintf("%d submissions imported successfully", n))
		return renderSubmissions(app, e, projectID, nil)
	}
}

// HandleSubmissionImportTemplate downloads an empty import spreadsheet.
func HandleSubmissionImportTemplate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.GenerateTenderImportTemplate()
		if err != nil {
			log.Printf("submission_import_template: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate template")
		}

		e.Response.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", `attachment; filename="Tender_Submissions_Template.xlsx"`)
		e.Response.Write(data)
		return nil
	}
}
