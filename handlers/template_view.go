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

func HandleTemplateView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		templateID := e.Request.PathValue("id")

		record, err := app.FindRecordById("templates", templateID)
		if err != nil {
			log.Printf("template_view: could not find template %s: %v", templateID, err)
			return e.String(http.StatusNotFound, "Template not found")
		}

		// Placeholders of a file-backed template come from the extracted text.
		placeholderText := record.GetString("template_text")
		if placeholderText == "" && record.GetString("source_file") != "" {
			src, err := services.LoadTemplateSource(app, templateID)
			if err != nil {
				log.Printf("template_view: could not extract text from %s: %v", templateID, err)
			} else {
				placeholderText = src.Text
			}
		}

		data := templates.TemplateViewData{
			ID:           record.Id,
			Name:         record.GetString("name"),
			Text:         record.GetString("template_text"),
			FileName:     record.GetString("source_file"),
			Placeholders: services.Placeholders(placeholderText),
			Updated:      services.FormatRelative(record.GetDateTime("updated").Time()),
			Projects:     nameOptions(app, "projects"),
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.TemplateViewContent(data)
		} else {
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component = templates.TemplateViewPage(data, headerData, sidebarData)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}
