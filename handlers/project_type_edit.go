package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

func HandleProjectTypeEdit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		typeID := e.Request.PathValue("id")

		record, err := app.FindRecordById("project_types", typeID)
		if err != nil {
			log.Printf("project_type_edit: could not find project type %s: %v", typeID, err)
			return e.String(http.StatusNotFound, "Project type not found")
		}

		pt := services.ProjectTypeFromRecord(record)
		data := templates.ProjectTypeFormData{
			ID:      record.Id,
			Name:    pt.Name,
			Price:   formatWeight(pt.PricePercentage),
			Quality: formatWeight(pt.QualityPercentage),
			Errors:  make(map[string]string),
		}
		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		component := templates.ProjectTypeFormPage(data, headerData, sidebarData)
		return component.Render(e.Request.Context(), e.Response)
	}
}

func HandleProjectTypeUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		typeID := e.Request.PathValue("id")

		record, err := app.FindRecordById("project_types", typeID)
		if err != nil {
			log.Printf("project_type_update: could not find project type %s: %v", typeID, err)
			return ErrorToast(e, http.StatusNotFound, "Project type not found")
		}

		form, err := parseProjectTypeForm(app, e, typeID)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		if len(form.data.Errors) > 0 {
			SetToast(e, "warning", "Please fix the errors below")
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component := templates.ProjectTypeFormPage(form.data, headerData, sidebarData)
			return component.Render(e.Request.Context(), e.Response)
		}

		applyProjectType(record, form.data.Name, form.price, form.quality)
		if err := app.Save(record); err != nil {
			log.Printf("project_type_update: could not save project type %s: %v", typeID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Project type updated")
		return redirect(e, "/project-types")
	}
}

// HandleProjectTypeDelete removes a project type that no project references.
func HandleProjectTypeDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		typeID := e.Request.PathValue("id")

		record, err := app.FindRecordById("project_types", typeID)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Project type not found")
		}

		n, err := countProjectsUsingType(app, typeID)
		if err != nil {
			log.Printf("project_type_delete: could not count projects for %s: %v", typeID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if n > 0 {
			return ErrorToast(e, http.StatusConflict, "This project type is used by a project and cannot be deleted")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("project_type_delete: failed to delete project type %s: %v", typeID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to delete project type")
		}

		SetToast(e, "success", "Project type deleted")
		return redirect(e, "/project-types")
	}
}
