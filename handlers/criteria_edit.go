package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

func HandleCriterionEdit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		criterionID := e.Request.PathValue("id")

		record, err := app.FindRecordById("evaluation_criteria", criterionID)
		if err != nil {
			log.Printf("criteria_edit: could not find criterion %s: %v", criterionID, err)
			return e.String(http.StatusNotFound, "Evaluation criterion not found")
		}

		c := services.CriterionFromRecord(record)
		data := templates.CriterionFormData{
			ID:          record.Id,
			Name:        c.Name,
			Description: c.Description,
			Methodology: c.DetailedScoringMethodology,
			Errors:      make(map[string]string),
		}
		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		component := templates.CriterionFormPage(data, headerData, sidebarData)
		return component.Render(e.Request.Context(), e.Response)
	}
}

func HandleCriterionUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		criterionID := e.Request.PathValue("id")

		record, err := app.FindRecordById("evaluation_criteria", criterionID)
		if err != nil {
			log.Printf("criteria_update: could not find criterion %s: %v", criterionID, err)
			return ErrorToast(e, http.StatusNotFound, "Evaluation criterion not found")
		}

		data, err := parseCriterionForm(app, e, criterionID)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		if len(data.Errors) > 0 {
			SetToast(e, "warning", "Please fix the errors below")
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component := templates.CriterionFormPage(data, headerData, sidebarData)
			return component.Render(e.Request.Context(), e.Response)
		}

		applyCriterion(record, criterionFromForm(data))
		if err := app.Save(record); err != nil {
			log.Printf("criteria_update: could not save criterion %s: %v", criterionID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Evaluation criterion updated")
		return redirect(e, "/evaluation-criteria")
	}
}

// HandleCriterionDelete removes a criterion. Nothing references criteria, so
// there is no usage check.
func HandleCriterionDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		criterionID := e.Request.PathValue("id")

		record, err := app.FindRecordById("evaluation_criteria", criterionID)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Evaluation criterion not found")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("criteria_delete: failed to delete criterion %s: %v", criterionID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to delete evaluation criterion")
		}

		SetToast(e, "success", "Evaluation criterion deleted")
		return redirect(e, "/evaluation-criteria")
	}
}
