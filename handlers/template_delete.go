package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
)

// HandleTemplateDelete removes a template. PocketBase deletes the attached
// source file with the record.
func HandleTemplateDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		templateID := e.Request.PathValue("id")

		record, err := app.FindRecordById("templates", templateID)
		if err != nil {
			log.Printf("template_delete: could not find template %s: %v", templateID, err)
			return ErrorToast(e, http.StatusNotFound, "Template not found")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("template_delete: failed to delete template %s: %v", templateID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to delete template")
		}

		log.Printf("template_delete: deleted template %s", templateID)
		SetToast(e, "success", "Template deleted")
		return redirect(e, "/templates")
	}
}

// HandleTemplateDownload streams a template's source document.
func HandleTemplateDownload(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		templateID := e.Request.PathValue("id")

		record, err := app.FindRecordById("templates", templateID)
		if err != nil {
			return e.String(http.StatusNotFound, "Template not found")
		}
		if record.GetString("source_file") == "" {
			return e.String(http.StatusNotFound, "Template has no source document")
		}

		data, err := services.ReadTemplateFile(app, record)
		if err != nil {
			log.Printf("template_download: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to read source document")
		}

		e.Response.Header().Set("Content-Type", "application/octet-stream")
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, sanitizeFilename(record.GetString("source_file"))))
		e.Response.Write(data)
		return nil
	}
}
