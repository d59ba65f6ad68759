package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"tenderdocs/services"
	"tenderdocs/templates"
)

// HandleProjectSettings shows the tender table column picker.
func HandleProjectSettings(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		project, err := app.FindRecordById("projects", projectID)
		if err != nil {
			log.Printf("project_settings: could not find project %s: %v", projectID, err)
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		selected := make(map[string]bool)
		for _, c := range services.ProjectTenderColumns(project) {
			selected[string(c)] = true
		}

		data := templates.ProjectSettingsData{
			ProjectID:   projectID,
			ProjectName: project.GetString("name"),
		}
		for _, opt := range services.TenderColumnOptions() {
			data.Columns = append(data.Columns, templates.ColumnChoice{
				Key:      opt.Value,
				Label:    opt.Label,
				Selected: selected[opt.Value],
			})
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.ProjectSettingsContent(data)
		} else {
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component = templates.ProjectSettingsPage(data, headerData, sidebarData)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleProjectSettingsSave stores the ticked columns in table order. Ticking
// nothing restores the default layout.
func HandleProjectSettingsSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		project, err := app.FindRecordById("projects", projectID)
		if err != nil {
			log.Printf("project_settings_save: could not find project %s: %v", projectID, err)
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		ticked := make(map[string]bool)
		for _, key := range e.Request.Form["columns"] {
			ticked[key] = true
		}
		var keys []string
		for _, c := range services.AllTenderColumns {
			if ticked[string(c)] {
				keys = append(keys, string(c))
			}
		}

		if len(keys) == 0 {
			project.Set("tender_columns", nil)
		} else {
			raw, err := json.Marshal(keys)
			if err != nil {
				log.Printf("project_settings_save: could not encode columns: %v", err)
				return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
			}
			project.Set("tender_columns", types.JSONRaw(raw))
		}

		if err := app.Save(project); err != nil {
			log.Printf("project_settings_save: failed to save project %s: %v", projectID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Settings saved")
		return redirect(e, "/projects/"+projectID)
	}
}
