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

func HandleTemplateList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("templates", "id != ''", "-updated", 0, 0)
		if err != nil {
			log.Printf("template_list: could not query templates: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		data := templates.TemplateListData{TotalCount: len(records)}
		for _, rec := range records {
			data.Items = append(data.Items, templates.TemplateListItem{
				ID:               rec.Id,
				Name:             rec.GetString("name"),
				FileName:         rec.GetString("source_file"),
				PlaceholderCount: len(services.Placeholders(rec.GetString("template_text"))),
				Updated:          services.FormatRelative(rec.GetDateTime("updated").Time()),
			})
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.TemplateListContent(data)
		} else {
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component = templates.TemplateListPage(data, headerData, sidebarData)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}
