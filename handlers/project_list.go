package handlers

import (
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

func HandleProjectList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("projects", "id != ''", "-created", 0, 0)
		if err != nil {
			log.Printf("project_list: could not query projects: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		approachNames := make(map[string]string)
		for _, opt := range nameOptions(app, "evaluation_approaches") {
			approachNames[opt.Value] = opt.Label
		}

		var items []templates.ProjectListItem
		for _, rec := range records {
			submissions, err := app.FindRecordsByFilter(
				"tender_submissions",
				"project = {:projectId}",
				"", 0, 0,
				map[string]any{"projectId": rec.Id},
			)
			if err != nil {
				submissions = nil
			}

			status := rec.GetString("status")
			items = append(items, templates.ProjectListItem{
				ID:               rec.Id,
				Name:             rec.GetString("name"),
				ClientName:       rec.GetString("client_name"),
				DocumentNo:       rec.GetString("document_no"),
				Status:           status,
				StatusBadgeClass: statusBadgeClass(status),
				SubmissionCount:  len(submissions),
				ApproachName:     approachNames[rec.GetString("evaluation_approach")],
				ClosingDate:      services.FormatDisplayDate(rec.GetString("closing_date")),
				Created:          services.FormatRelative(rec.GetDateTime("created").Time()),
			})
		}

		data := templates.ProjectListData{Items: items}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.ProjectListContent(data)
		} else {
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component = templates.ProjectListPage(data, headerData, sidebarData)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}
