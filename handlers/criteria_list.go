package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

func HandleCriteriaList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("evaluation_criteria", "id != ''", "name", 0, 0)
		if err != nil {
			log.Printf("criteria_list: could not query criteria: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		var data templates.CriteriaListData
		for _, rec := range records {
			c := services.CriterionFromRecord(rec)
			data.Items = append(data.Items, templates.CriterionListItem{
				ID:          c.ID,
				Name:        c.Name,
				Description: c.Description,
				Methodology: c.DetailedScoringMethodology,
			})
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.CriteriaListContent(data)
		} else {
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component = templates.CriteriaListPage(data, headerData, sidebarData)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// criterionJSON is the shape served and accepted by the evaluation criteria
// API.
type criterionJSON struct {
	ID                         string `json:"id"`
	Name                       string `json:"name"`
	Description                string `json:"description"`
	DetailedScoringMethodology string `json:"detailed_scoring_methodology"`
}

func toCriterionJSON(c services.EvaluationCriterion) criterionJSON {
	return criterionJSON{
		ID:                         c.ID,
		Name:                       c.Name,
		Description:                c.Description,
		DetailedScoringMethodology: c.DetailedScoringMethodology,
	}
}

// criterionAPIError picks the response for field errors. Missing or oversized
// fields are 400; a name clash is 409.
func criterionAPIError(errs map[string]string) (int, string) {
	for _, field := range []string{"name", "description", "detailed_scoring_methodology"} {
		if msg := errs[field]; msg != "" && msg != errCriterionDuplicate {
			return http.StatusBadRequest, msg
		}
	}
	return http.StatusConflict, errCriterionDuplicate
}

func decodeCriterion(e *core.RequestEvent) (services.EvaluationCriterion, error) {
	var body criterionJSON
	if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
		return services.EvaluationCriterion{}, err
	}
	return services.EvaluationCriterion{
		Name:                       strings.TrimSpace(body.Name),
		Description:                strings.TrimSpace(body.Description),
		DetailedScoringMethodology: strings.TrimSpace(body.DetailedScoringMethodology),
	}, nil
}

// HandleCriteriaAPI returns every evaluation criterion ordered by name as
// {"evaluationCriteria": [...]}.
func HandleCriteriaAPI(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("evaluation_criteria", "id != ''", "name", 0, 0)
		if err != nil {
			log.Printf("criteria_api: could not query criteria: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch evaluation criteria"})
		}

		criteria := make([]criterionJSON, 0, len(records))
		for _, rec := range records {
			criteria = append(criteria, toCriterionJSON(services.CriterionFromRecord(rec)))
		}
		return e.JSON(http.StatusOK, map[string]any{"evaluationCriteria": criteria})
	}
}

// HandleCriterionAPICreate adds a criterion from a JSON body and answers 201.
func HandleCriterionAPICreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		c, err := decodeCriterion(e)
		if err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		}
		if errs := validateCriterion(app, c, ""); len(errs) > 0 {
			status, msg := criterionAPIError(errs)
			return e.JSON(status, map[string]string{"error": msg})
		}

		col, err := app.FindCollectionByNameOrId("evaluation_criteria")
		if err != nil {
			log.Printf("criteria_api: could not find evaluation_criteria collection: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create evaluation criteria"})
		}
		record := core.NewRecord(col)
		applyCriterion(record, c)
		if err := app.Save(record); err != nil {
			log.Printf("criteria_api: could not save criterion: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create evaluation criteria"})
		}

		return e.JSON(http.StatusCreated, map[string]any{"evaluationCriteria": toCriterionJSON(services.CriterionFromRecord(record))})
	}
}

func HandleCriterionAPIGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("evaluation_criteria", e.Request.PathValue("id"))
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]string{"error": "Evaluation criteria not found"})
		}
		return e.JSON(http.StatusOK, map[string]any{"evaluationCriteria": toCriterionJSON(services.CriterionFromRecord(record))})
	}
}

func HandleCriterionAPIUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		criterionID := e.Request.PathValue("id")
		record, err := app.FindRecordById("evaluation_criteria", criterionID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]string{"error": "Evaluation criteria not found"})
		}

		c, err := decodeCriterion(e)
		if err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		}
		if errs := validateCriterion(app, c, criterionID); len(errs) > 0 {
			status, msg := criterionAPIError(errs)
			return e.JSON(status, map[string]string{"error": msg})
		}

		applyCriterion(record, c)
		if err := app.Save(record); err != nil {
			log.Printf("criteria_api: could not save criterion %s: %v", criterionID, err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update evaluation criteria"})
		}
		return e.JSON(http.StatusOK, map[string]any{"evaluationCriteria": toCriterionJSON(services.CriterionFromRecord(record))})
	}
}

func HandleCriterionAPIDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		criterionID := e.Request.PathValue("id")
		record, err := app.FindRecordById("evaluation_criteria", criterionID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]string{"error": "Evaluation criteria not found"})
		}
		if err := app.Delete(record); err != nil {
			log.Printf("criteria_api: failed to delete criterion %s: %v", criterionID, err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete evaluation criteria"})
		}
		return e.JSON(http.StatusOK, map[string]string{"message": "Evaluation criteria deleted successfully"})
	}
}
