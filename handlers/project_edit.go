package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

func HandleProjectEdit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		record, err := app.FindRecordById("projects", projectID)
		if err != nil {
			log.Printf("project_edit: could not find project %s: %v", projectID, err)
			return e.String(http.StatusNotFound, "Project not found")
		}

		params := strings.TrimSpace(record.GetString("parameters"))
		if params == "null" {
			params = ""
		}
		suppliers := ""
		if n := record.GetInt("suppliers_count"); n > 0 {
			suppliers = strconv.Itoa(n)
		}

		data := templates.ProjectFormData{
			ID:              record.Id,
			Name:            record.GetString("name"),
			ClientName:      record.GetString("client_name"),
			DocumentNo:      record.GetString("document_no"),
			ReferenceNo:     record.GetString("reference_no"),
			PublicationDate: services.FormatInputDate(record.GetString("publication_date")),
			ClosingDate:     services.FormatInputDate(record.GetString("closing_date")),
			Description:     record.GetString("description"),
			SuppliersCount:  suppliers,
			Status:          record.GetString("status"),
			StatusOptions:   statusOptions(),
			ApproachID:      record.GetString("evaluation_approach"),
			Approaches:      nameOptions(app, "evaluation_approaches"),
			ProjectTypeID:   record.GetString("project_type"),
			ProjectTypes:    nameOptions(app, "project_types"),
			Parameters:      params,
			Errors:          make(map[string]string),
		}
		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		component := templates.ProjectFormPage(data, headerData, sidebarData)
		return component.Render(e.Request.Context(), e.Response)
	}
}

func HandleProjectUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		record, err := app.FindRecordById("projects", projectID)
		if err != nil {
			log.Printf("project_update: could not find project %s: %v", projectID, err)
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		form, err := parseProjectForm(app, e, projectID)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		if len(form.data.Errors) > 0 {
			SetToast(e, "warning", "Please fix the errors below")
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component := templates.ProjectFormPage(form.data, headerData, sidebarData)
			return component.Render(e.Request.Context(), e.Response)
		}

		form.apply(record)
		if err := app.Save(record); err != nil {
			log.Printf("project_update: could not save project %s: %v", projectID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Project updated successfully")
		return redirect(e, "/projects/"+projectID)
	}
}
