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

type previewRequest struct {
	TemplateID string `json:"templateId"`
	ProjectID  string `json:"projectId"`
}

// previewStatus maps a RenderDocument error onto an HTTP status, a message
// and, for lookups, the entity that was missing.
func previewStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, services.ErrTemplateNotFound):
		return http.StatusNotFound, "Template not found", "template"
	case errors.Is(err, services.ErrProjectNotFound):
		return http.StatusNotFound, "Project not found", "project"
	case errors.Is(err, services.ErrTemplateEmpty):
		return http.StatusUnprocessableEntity, "Template has no text to render", ""
	case errors.Is(err, services.ErrDocumentConversion), errors.Is(err, services.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity, "Template source document could not be converted", ""
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again.", ""
	}
}

// HandleDocumentPreviewAPI renders a template against a project.
// Route: POST /api/documents/preview with {"templateId", "projectId"}.
func HandleDocumentPreviewAPI(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body previewRequest
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		}
		body.TemplateID = strings.TrimSpace(body.TemplateID)
		body.ProjectID = strings.TrimSpace(body.ProjectID)
		if body.TemplateID == "" || body.ProjectID == "" {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "templateId and projectId are required"})
		}

		preview, err := services.RenderDocument(app, body.TemplateID, body.ProjectID, services.DefaultRenderOptions())
		if err != nil {
			status, msg, entity := previewStatus(err)
			if status == http.StatusInternalServerError {
				log.Printf("document_preview: %v", err)
			}
			resp := map[string]string{"error": msg}
			if entity != "" {
				resp["entity"] = entity
			}
			return e.JSON(status, resp)
		}

		return e.JSON(http.StatusOK, map[string]any{"preview": preview})
	}
}

// HandleDocumentPreviewPage shows the template and project pickers.
func HandleDocumentPreviewPage(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := templates.DocumentPreviewData{
			Templates:  nameOptions(app, "templates"),
			Projects:   nameOptions(app, "projects"),
			TemplateID: e.Request.URL.Query().Get("template"),
			ProjectID:  e.Request.URL.Query().Get("project"),
		}
		if data.ProjectID == "" {
			if active := GetActiveProject(e.Request); active != nil {
				data.ProjectID = active.ID
			}
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.DocumentPreviewContent(data)
		} else {
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component = templates.DocumentPreviewPage(data, headerData, sidebarData)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleDocumentPreviewRender renders the preview as an HTML fragment. The
// merged content is sanitized before it reaches the page.
func HandleDocumentPreviewRender(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		templateID := strings.TrimSpace(e.Request.FormValue("templateId"))
		projectID := strings.TrimSpace(e.Request.FormValue("projectId"))
		if templateID == "" || projectID == "" {
			return ErrorToast(e, http.StatusBadRequest, "Select a template and a project")
		}

		preview, err := services.RenderDocument(app, templateID, projectID, services.DefaultRenderOptions())
		if err != nil {
			status, msg, _ := previewStatus(err)
			log.Printf("document_preview: template %s project %s: %v", templateID, projectID, err)
			e.Response.WriteHeader(status)
			return templates.DocumentPreviewError(msg).Render(e.Request.Context(), e.Response)
		}

		safe := services.SanitizePreview(preview.Content)
		return templates.DocumentPreviewResult(preview, safe, projectID).Render(e.Request.Context(), e.Response)
	}
}
