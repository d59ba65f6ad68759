package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/templates"
)

func HandleTemplateEdit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		templateID := e.Request.PathValue("id")

		record, err := app.FindRecordById("templates", templateID)
		if err != nil {
			log.Printf("template_edit: could not find template %s: %v", templateID, err)
			return e.String(http.StatusNotFound, "Template not found")
		}

		data := templates.TemplateFormData{
			ID:       record.Id,
			Name:     record.GetString("name"),
			Text:     record.GetString("template_text"),
			FileName: record.GetString("source_file"),
			Errors:   make(map[string]string),
		}
		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		component := templates.TemplateFormPage(data, headerData, sidebarData)
		return component.Render(e.Request.Context(), e.Response)
	}
}

func HandleTemplateUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		templateID := e.Request.PathValue("id")

		record, err := app.FindRecordById("templates", templateID)
		if err != nil {
			log.Printf("template_update: could not find template %s: %v", templateID, err)
			return ErrorToast(e, http.StatusNotFound, "Template not found")
		}

		form, err := parseTemplateForm(app, e, templateID, record.GetString("source_file") != "")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		if len(form.errors) > 0 {
			SetToast(e, "warning", "Please fix the errors below")
			data := templates.TemplateFormData{
				ID:       templateID,
				Name:     form.name,
				Text:     form.text,
				FileName: record.GetString("source_file"),
				Errors:   form.errors,
			}
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component := templates.TemplateFormPage(data, headerData, sidebarData)
			return component.Render(e.Request.Context(), e.Response)
		}

		if err := form.apply(record); err != nil {
			log.Printf("template_update: could not read upload: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "Could not read the uploaded file")
		}
		if err := app.Save(record); err != nil {
			log.Printf("template_update: could not save template %s: %v", templateID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Template updated successfully")
		return redirect(e, "/templates/"+templateID)
	}
}
