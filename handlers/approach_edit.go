package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

func HandleApproachEdit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		approachID := e.Request.PathValue("id")

		record, err := app.FindRecordById("evaluation_approaches", approachID)
		if err != nil {
			log.Printf("approach_edit: could not find approach %s: %v", approachID, err)
			return e.String(http.StatusNotFound, "Evaluation approach not found")
		}

		approach := services.ApproachFromRecord(record)
		data := templates.ApproachFormData{
			ID:        record.Id,
			Name:      approach.Name,
			Price:     formatWeight(approach.PricePercentage),
			Safety:    formatWeight(approach.SafetyPercentage),
			Technical: formatWeight(approach.TechnicalPercentage),
			Criteria:  services.CriteriaLines(approach.TechnicalCriteria),
			Errors:    make(map[string]string),
		}
		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		component := templates.ApproachFormPage(data, headerData, sidebarData)
		return component.Render(e.Request.Context(), e.Response)
	}
}

func HandleApproachUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		approachID := e.Request.PathValue("id")

		record, err := app.FindRecordById("evaluation_approaches", approachID)
		if err != nil {
			log.Printf("approach_update: could not find approach %s: %v", approachID, err)
			return ErrorToast(e, http.StatusNotFound, "Evaluation approach not found")
		}

		form, err := parseApproachForm(app, e, approachID)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		if len(form.data.Errors) > 0 {
			SetToast(e, "warning", "Please fix the errors below")
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component := templates.ApproachFormPage(form.data, headerData, sidebarData)
			return component.Render(e.Request.Context(), e.Response)
		}

		if err := form.apply(record); err != nil {
			log.Printf("approach_update: could not encode criteria: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if err := app.Save(record); err != nil {
			log.Printf("approach_update: could not save approach %s: %v", approachID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		if msg := form.totalWarning(); msg != "" {
			SetToast(e, "warning", msg)
		} else {
			SetToast(e, "success", "Evaluation approach updated")
		}
		return redirect(e, "/evaluation-approaches")
	}
}

// HandleApproachDelete removes an approach that no project references.
func HandleApproachDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		approachID := e.Request.PathValue("id")

		record, err := app.FindRecordById("evaluation_approaches", approachID)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Evaluation approach not found")
		}

		n, err := countProjectsUsingApproach(app, approachID)
		if err != nil {
			log.Printf("approach_delete: could not count projects for %s: %v", approachID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if n > 0 {
			return ErrorToast(e, http.StatusConflict, "This approach is used by a project and cannot be deleted")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("approach_delete: failed to delete approach %s: %v", approachID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to delete evaluation approach")
		}

		SetToast(e, "success", "Evaluation approach deleted")
		return redirect(e, "/evaluation-approaches")
	}
}

// formatWeight renders a weight for a number input, without the % sign.
func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
