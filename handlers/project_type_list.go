package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

func HandleProjectTypeList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("project_types", "id != ''", "name", 0, 0)
		if err != nil {
			log.Printf("project_type_list: could not query project types: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		var data templates.ProjectTypeListData
		for _, rec := range records {
			pt := services.ProjectTypeFromRecord(rec)

			projectCount := 0
			if n, err := countProjectsUsingType(app, rec.Id); err == nil {
				projectCount = n
			}

			data.Items = append(data.Items, templates.ProjectTypeListItem{
				ID:           pt.ID,
				Name:         pt.Name,
				Price:        services.FormatPercent(pt.PricePercentage),
				Quality:      services.FormatPercent(pt.QualityPercentage),
				ProjectCount: projectCount,
			})
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.ProjectTypeListContent(data)
		} else {
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component = templates.ProjectTypeListPage(data, headerData, sidebarData)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

func countProjectsUsingType(app *pocketbase.PocketBase, typeID string) (int, error) {
	projects, err := app.FindRecordsByFilter(
		"projects",
		"project_type = {:id}",
		"", 0, 0,
		map[string]any{"id": typeID},
	)
	if err != nil {
		return 0, err
	}
	return len(projects), nil
}

// projectTypeJSON is the shape served and accepted by the project types API.
type projectTypeJSON struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	PricePercentage   float64 `json:"price_percentage"`
	QualityPercentage float64 `json:"quality_percentage"`
}

func toProjectTypeJSON(pt services.ProjectType) projectTypeJSON {
	return projectTypeJSON{
		ID:                pt.ID,
		Name:              pt.Name,
		PricePercentage:   pt.PricePercentage,
		QualityPercentage: pt.QualityPercentage,
	}
}

// checkProjectTypeBody validates an API body in the order required fields,
// weight rules, then name clash. It returns 0 when the body is acceptable.
func checkProjectTypeBody(app *pocketbase.PocketBase, body projectTypeJSON, excludeID string) (int, string) {
	err := services.ValidateProjectTypeWeights(body.PricePercentage, body.QualityPercentage)
	if body.Name == "" || errors.Is(err, services.ErrWeightsRequired) {
		return http.StatusBadRequest, "Name, price_percentage, and quality_percentage are required"
	}
	if err != nil {
		return http.StatusBadRequest, weightsMessage(err)
	}
	if nameTaken(app, "project_types", body.Name, excludeID) {
		return http.StatusConflict, errProjectTypeDuplicate
	}
	return 0, ""
}

func decodeProjectType(e *core.RequestEvent) (projectTypeJSON, error) {
	var body projectTypeJSON
	if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
		return body, err
	}
	body.Name = strings.TrimSpace(body.Name)
	return body, nil
}

// HandleProjectTypeAPI returns every project type ordered by name as
// {"projectTypes": [...]}.
func HandleProjectTypeAPI(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("project_types", "id != ''", "name", 0, 0)
		if err != nil {
			log.Printf("project_type_api: could not query project types: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch project types"})
		}

		projectTypes := make([]projectTypeJSON, 0, len(records))
		for _, rec := range records {
			projectTypes = append(projectTypes, toProjectTypeJSON(services.ProjectTypeFromRecord(rec)))
		}
		return e.JSON(http.StatusOK, map[string]any{"projectTypes": projectTypes})
	}
}

// HandleProjectTypeAPICreate adds a project type from a JSON body and answers
// 201.
func HandleProjectTypeAPICreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		body, err := decodeProjectType(e)
		if err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		}
		if status, msg := checkProjectTypeBody(app, body, ""); status != 0 {
			return e.JSON(status, map[string]string{"error": msg})
		}

		col, err := app.FindCollectionByNameOrId("project_types")
		if err != nil {
			log.Printf("project_type_api: could not find project_types collection: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create project type"})
		}
		record := core.NewRecord(col)
		applyProjectType(record, body.Name, body.PricePercentage, body.QualityPercentage)
		if err := app.Save(record); err != nil {
			log.Printf("project_type_api: could not save project type: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create project type"})
		}

		return e.JSON(http.StatusCreated, map[string]any{"projectType": toProjectTypeJSON(services.ProjectTypeFromRecord(record))})
	}
}

func HandleProjectTypeAPIGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("project_types", e.Request.PathValue("id"))
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]string{"error": "Project type not found"})
		}
		return e.JSON(http.StatusOK, map[string]any{"projectType": toProjectTypeJSON(services.ProjectTypeFromRecord(record))})
	}
}

func HandleProjectTypeAPIUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		typeID := e.Request.PathValue("id")
		record, err := app.FindRecordById("project_types", typeID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]string{"error": "Project type not found"})
		}

		body, err := decodeProjectType(e)
		if err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		}
		if status, msg := checkProjectTypeBody(app, body, typeID); status != 0 {
			return e.JSON(status, map[string]string{"error": msg})
		}

		applyProjectType(record, body.Name, body.PricePercentage, body.QualityPercentage)
		if err := app.Save(record); err != nil {
			log.Printf("project_type_api: could not save project type %s: %v", typeID, err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update project type"})
		}
		return e.JSON(http.StatusOK, map[string]any{"projectType": toProjectTypeJSON(services.ProjectTypeFromRecord(record))})
	}
}

// HandleProjectTypeAPIDelete answers 409 while any project references the
// type.
func HandleProjectTypeAPIDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		typeID := e.Request.PathValue("id")
		record, err := app.FindRecordById("project_types", typeID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]string{"error": "Project type not found"})
		}

		n, err := countProjectsUsingType(app, typeID)
		if err != nil {
			log.Printf("project_type_api: could not count projects for %s: %v", typeID, err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete project type"})
		}
		if n > 0 {
			return e.JSON(http.StatusConflict, map[string]string{"error": "Cannot delete project type that is being used by existing projects"})
		}

		if err := app.Delete(record); err != nil {
			log.Printf("project_type_api: failed to delete project type %s: %v", typeID, err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete project type"})
		}
		return e.JSON(http.StatusOK, map[string]string{"message": "Project type deleted successfully"})
	}
}
