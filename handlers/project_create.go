package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"tenderdocs/collections"
	"tenderdocs/templates"
)

// projectForm is a parsed project form submission.
type projectForm struct {
	data           templates.ProjectFormData
	suppliersCount int
	parameters     types.JSONRaw
}

func parseProjectForm(app *pocketbase.PocketBase, e *core.RequestEvent, excludeID string) (*projectForm, error) {
	if err := e.Request.ParseForm(); err != nil {
		return nil, err
	}

	f := &projectForm{
		data: templates.ProjectFormData{
			ID:              excludeID,
			Name:            strings.TrimSpace(e.Request.FormValue("name")),
			ClientName:      strings.TrimSpace(e.Request.FormValue("client_name")),
			DocumentNo:      strings.TrimSpace(e.Request.FormValue("document_no")),
			ReferenceNo:     strings.TrimSpace(e.Request.FormValue("reference_no")),
			PublicationDate: strings.TrimSpace(e.Request.FormValue("publication_date")),
			ClosingDate:     strings.TrimSpace(e.Request.FormValue("closing_date")),
			Description:     strings.TrimSpace(e.Request.FormValue("description")),
			SuppliersCount:  strings.TrimSpace(e.Request.FormValue("suppliers_count")),
			Status:          strings.TrimSpace(e.Request.FormValue("status")),
			ApproachID:      strings.TrimSpace(e.Request.FormValue("evaluation_approach")),
			Parameters:      strings.TrimSpace(e.Request.FormValue("parameters")),
			StatusOptions:   statusOptions(),
			Approaches:      nameOptions(app, "evaluation_approaches"),
			ProjectTypeID:   strings.TrimSpace(e.Request.FormValue("project_type")),
			ProjectTypes:    nameOptions(app, "project_types"),
			Errors:          make(map[string]string),
		},
	}
	errs := f.data.Errors

	if f.data.Name == "" {
		errs["name"] = "Project name is required"
	} else {
		existing, _ := app.FindRecordsByFilter(
			"projects",
			"name = {:name} && id != {:id}",
			"", 1, 0,
			map[string]any{"name": f.data.Name, "id": excludeID},
		)
		if len(existing) > 0 {
			errs["name"] = "A project with this name already exists"
		}
	}

	if !validStatus(f.data.Status) {
		f.data.Status = collections.DefaultProjectStatus
	}

	if f.data.ApproachID != "" {
		if _, err := app.FindRecordById("evaluation_approaches", f.data.ApproachID); err != nil {
			errs["evaluation_approach"] = "Selected evaluation approach no longer exists"
		}
	}

	if f.data.ProjectTypeID != "" {
		if _, err := app.FindRecordById("project_types", f.data.ProjectTypeID); err != nil {
			errs["project_type"] = "Selected project type no longer exists"
		}
	}

	if f.data.SuppliersCount != "" {
		n, err := strconv.Atoi(f.data.SuppliersCount)
		if err != nil || n < 0 {
			errs["suppliers_count"] = "Suppliers invited must be a whole number"
		}
		f.suppliersCount = n
	}

	if f.data.Parameters != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(f.data.Parameters), &obj); err != nil {
			errs["parameters"] = "Extra parameters must be a JSON object"
		} else {
			f.parameters = types.JSONRaw(f.data.Parameters)
		}
	}

	return f, nil
}

// apply copies the form onto a projects record.
func (f *projectForm) apply(record *core.Record) {
	record.Set("name", f.data.Name)
	record.Set("client_name", f.data.ClientName)
	record.Set("document_no", f.data.DocumentNo)
	record.Set("reference_no", f.data.ReferenceNo)
	record.Set("publication_date", f.data.PublicationDate)
	record.Set("closing_date", f.data.ClosingDate)
	record.Set("description", f.data.Description)
	record.Set("suppliers_count", f.suppliersCount)
	record.Set("status", f.data.Status)
	record.Set("evaluation_approach", f.data.ApproachID)
	record.Set("project_type", f.data.ProjectTypeID)
	if f.parameters != nil {
		record.Set("parameters", f.parameters)
	} else {
		record.Set("parameters", nil)
	}
}

func HandleProjectCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := templates.ProjectFormData{
			Status:        collections.DefaultProjectStatus,
			StatusOptions: statusOptions(),
			Approaches:    nameOptions(app, "evaluation_approaches"),
			ProjectTypes:  nameOptions(app, "project_types"),
			Errors:        make(map[string]string),
		}
		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		component := templates.ProjectFormPage(data, headerData, sidebarData)
		return component.Render(e.Request.Context(), e.Response)
	}
}

func HandleProjectSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		form, err := parseProjectForm(app, e, "")
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

		projectsCol, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("project_create: could not find projects collection: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(projectsCol)
		form.apply(record)
		if err := app.Save(record); err != nil {
			log.Printf("project_create: could not save project: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Project created successfully")
		return redirect(e, "/projects/"+record.Id)
	}
}
