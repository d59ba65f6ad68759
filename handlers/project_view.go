package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

// buildSubmissionsData lists a project's submissions in entry order with
// their rank by adjustment.
func buildSubmissionsData(projectID string, rows []services.TenderSubmission) templates.SubmissionsData {
	ranks := make(map[string]int, len(rows))
	for i, s := range services.SortTenderSubmissions(rows) {
		ranks[s.ID] = i + 1
	}

	data := templates.SubmissionsData{
		ProjectID:   projectID,
		SignOptions: services.SignOptions,
		Errors:      make(map[string]string),
	}
	for i, s := range rows {
		data.Rows = append(data.Rows, templates.SubmissionRow{
			ID:                s.ID,
			SortOrder:         i + 1,
			Rank:              ranks[s.ID],
			SupplierName:      s.SupplierName,
			ScheduleOfRatesNo: s.ScheduleOfRatesNo,
			ResponseNo:        s.ResponseNo,
			Adjustment:        services.FormatAdjustment(s.PercentageAdjustment, s.PercentageSign),
			EntryDate:         services.FormatDisplayDate(s.EntryDate),
			Remarks:           s.Remarks,
		})
	}
	return data
}

func HandleProjectView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		project, err := services.LoadProjectData(app, projectID)
		if errors.Is(err, services.ErrProjectNotFound) {
			return e.String(http.StatusNotFound, "Project not found")
		}
		if err != nil {
			log.Printf("project_view: %v", err)
			return e.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		created := ""
		if rec, err := app.FindRecordById("projects", projectID); err == nil {
			created = services.FormatDisplayDate(rec.GetDateTime("created").String())
		}

		data := templates.ProjectViewData{
			ID:               project.ID,
			Name:             project.Name,
			ClientName:       project.ClientName,
			DocumentNo:       project.DocumentNo,
			ReferenceNo:      project.ReferenceNo,
			PublicationDate:  services.FormatDisplayDate(project.PublicationDate),
			ClosingDate:      services.FormatDisplayDate(project.ClosingDate),
			Description:      project.Description,
			SuppliersCount:   project.SuppliersCount,
			Status:           project.Status,
			StatusBadgeClass: statusBadgeClass(project.Status),
			Created:          created,
			Approach:         project.Approach,
			Submissions:      buildSubmissionsData(projectID, project.Submissions),
			Templates:        nameOptions(app, "templates"),
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.ProjectViewContent(data)
		} else {
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component = templates.ProjectViewPage(data, headerData, sidebarData)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}
