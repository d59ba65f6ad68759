package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

func HandleApproachList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("evaluation_approaches", "id != ''", "name", 0, 0)
		if err != nil {
			log.Printf("approach_list: could not query approaches: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		var data templates.ApproachListData
		for _, rec := range records {
			approach := services.ApproachFromRecord(rec)
			total := approach.TotalPercentage()

			projectCount := 0
			if n, err := countProjectsUsingApproach(app, rec.Id); err == nil {
				projectCount = n
			}

			data.Items = append(data.Items, templates.ApproachListItem{
				ID:           rec.Id,
				Name:         approach.Name,
				Price:        services.FormatPercent(approach.PricePercentage),
				Safety:       services.FormatPercent(approach.SafetyPercentage),
				Technical:    services.FormatPercent(approach.TechnicalPercentage),
				Total:        services.FormatPercent(total),
				TotalValid:   total == 100,
				BandCount:    len(approach.TechnicalCriteria),
				ProjectCount: projectCount,
			})
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.ApproachListContent(data)
		} else {
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component = templates.ApproachListPage(data, headerData, sidebarData)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

func countProjectsUsingApproach(app *pocketbase.PocketBase, approachID string) (int, error) {
	projects, err := app.FindRecordsByFilter(
		"projects",
		"evaluation_approach = {:id}",
		"", 0, 0,
		map[string]any{"id": approachID},
	)
	if err != nil {
		return 0, err
	}
	return len(projects), nil
}

// approachJSON is the shape served by the evaluation approaches API.
type approachJSON struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	PricePercentage     float64         `json:"price_percentage"`
	SafetyPercentage    float64         `json:"safety_percentage"`
	TechnicalPercentage float64         `json:"technical_percentage"`
	TechnicalCriteria   json.RawMessage `json:"technical_criteria"`
}

// HandleApproachAPI returns every evaluation approach ordered by name as
// {"approaches": [...]}.
func HandleApproachAPI(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("evaluation_approaches", "id != ''", "name", 0, 0)
		if err != nil {
			log.Printf("approach_api: could not query approaches: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}

		approaches := make([]approachJSON, 0, len(records))
		for _, rec := range records {
			approach := services.ApproachFromRecord(rec)
			criteria, err := services.MarshalTechnicalCriteria(approach.TechnicalCriteria)
			if err != nil || len(approach.TechnicalCriteria) == 0 {
				criteria = []byte("null")
			}
			approaches = append(approaches, approachJSON{
				ID:                  approach.ID,
				Name:                approach.Name,
				PricePercentage:     approach.PricePercentage,
				SafetyPercentage:    approach.SafetyPercentage,
				TechnicalPercentage: approach.TechnicalPercentage,
				TechnicalCriteria:   criteria,
			})
		}
		return e.JSON(http.StatusOK, map[string]any{"approaches": approaches})
	}
}
