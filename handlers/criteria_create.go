package handlers

import (
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

const (
	criterionNameMax        = 200
	criterionDescriptionMax = 5000
	criterionMethodologyMax = 20000
)

const errCriterionDuplicate = "An evaluation criteria with this name already exists"

// validateCriterion returns field errors keyed by form field name.
func validateCriterion(app *pocketbase.PocketBase, c services.EvaluationCriterion, excludeID string) map[string]string {
	errs := make(map[string]string)

	switch {
	case c.Name == "":
		errs["name"] = "Name is required"
	case utf8.RuneCountInString(c.Name) > criterionNameMax:
		errs["name"] = "Name must be at most 200 characters"
	case nameTaken(app, "evaluation_criteria", c.Name, excludeID):
		errs["name"] = errCriterionDuplicate
	}

	if utf8.RuneCountInString(c.Description) > criterionDescriptionMax {
		errs["description"] = "Description must be at most 5000 characters"
	}

	switch {
	case strings.TrimSpace(c.DetailedScoringMethodology) == "":
		errs["detailed_scoring_methodology"] = "Detailed scoring methodology is required"
	case utf8.RuneCountInString(c.DetailedScoringMethodology) > criterionMethodologyMax:
		errs["detailed_scoring_methodology"] = "Detailed scoring methodology must be at most 20000 characters"
	}

	return errs
}

func parseCriterionForm(app *pocketbase.PocketBase, e *core.RequestEvent, excludeID string) (templates.CriterionFormData, error) {
	if err := e.Request.ParseForm(); err != nil {
		return templates.CriterionFormData{}, err
	}

	data := templates.CriterionFormData{
		ID:          excludeID,
		Name:        strings.TrimSpace(e.Request.FormValue("name")),
		Description: strings.TrimSpace(e.Request.FormValue("description")),
		Methodology: strings.TrimSpace(e.Request.FormValue("detailed_scoring_methodology")),
	}
	data.Errors = validateCriterion(app, criterionFromForm(data), excludeID)
	return data, nil
}

func criterionFromForm(data templates.CriterionFormData) services.EvaluationCriterion {
	return services.EvaluationCriterion{
		ID:                         data.ID,
		Name:                       data.Name,
		Description:                data.Description,
		DetailedScoringMethodology: data.Methodology,
	}
}

// applyCriterion copies a criterion onto an evaluation_criteria record.
func applyCriterion(record *core.Record, c services.EvaluationCriterion) {
	record.Set("name", c.Name)
	record.Set("description", c.Description)
	record.Set("detailed_scoring_methodology", c.DetailedScoringMethodology)
}

func HandleCriterionCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := templates.CriterionFormData{Errors: make(map[string]string)}
		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		component := templates.CriterionFormPage(data, headerData, sidebarData)
		return component.Render(e.Request.Context(), e.Response)
	}
}

func HandleCriterionSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := parseCriterionForm(app, e, "")
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

		col, err := app.FindCollectionByNameOrId("evaluation_criteria")
		if err != nil {
			log.Printf("criteria_create: could not find evaluation_criteria collection: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		applyCriterion(record, criterionFromForm(data))
		if err := app.Save(record); err != nil {
			log.Printf("criteria_create: could not save criterion: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Evaluation criterion created")
		return redirect(e, "/evaluation-criteria")
	}
}
