package handlers

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
	"tenderdocs/templates"
)

// renderSubmissions re-renders the submissions section of a project.
func renderSubmissions(app *pocketbase.PocketBase, e *core.RequestEvent, projectID string, formErrors map[string]string) error {
	project, err := services.LoadProjectData(app, projectID)
	if err != nil {
		log.Printf("submissions: %v", err)
		return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
	data := buildSubmissionsData(projectID, project.Submissions)
	if formErrors != nil {
		data.Errors = formErrors
	}
	return templates.SubmissionsSection(data).Render(e.Request.Context(), e.Response)
}

// HandleSubmissionAdd appends a hand-entered tender submission to a project.
func HandleSubmissionAdd(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		errs := make(map[string]string)
		row := services.TenderSubmission{
			SupplierName:               strings.TrimSpace(e.Request.FormValue("supplier_name")),
			ScheduleOfRatesNo:          strings.TrimSpace(e.Request.FormValue("schedule_of_rates_no")),
			TradingPartnerReferenceNo:  strings.TrimSpace(e.Request.FormValue("trading_partner_reference_no")),
			ResponseNo:                 strings.TrimSpace(e.Request.FormValue("response_no")),
			ScheduleOfRatesDescription: strings.TrimSpace(e.Request.FormValue("schedule_of_rates_description")),
			PercentageSign:             services.ParseSign(e.Request.FormValue("percentage_sign")),
			EntryDate:                  strings.TrimSpace(e.Request.FormValue("entry_date")),
			Remarks:                    strings.TrimSpace(e.Request.FormValue("supplier_remarks")),
		}
		if row.SupplierName == "" {
			errs["supplier_name"] = "Supplier name is required"
		}
		if raw := strings.TrimSpace(e.Request.FormValue("percentage_adjustment")); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				errs["percentage_adjustment"] = "Percentage adjustment must be a number"
			}
			row.PercentageAdjustment = v
		}

		if len(errs) > 0 {
			SetToast(e, "warning", "Please fix the errors below")
			return renderSubmissions(app, e, projectID, errs)
		}

		if _, err := services.CommitTenderImport(app, projectID, []services.TenderSubmission{row}, false); err != nil {
			log.Printf("submission_add: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Submission added")
		return renderSubmissions(app, e, projectID, nil)
	}
}

// HandleSubmissionDelete removes one submission from a project.
func HandleSubmissionDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		submissionID := e.Request.PathValue("submissionId")

		record, err := app.FindRecordById("tender_submissions", submissionID)
		if err != nil || record.GetString("project") != projectID {
			return ErrorToast(e, http.StatusNotFound, "Submission not found")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("submission_delete: failed to delete %s: %v", submissionID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to delete submission")
		}

		SetToast(e, "success", "Submission removed")
		return renderSubmissions(app, e, projectID, nil)
	}
}
