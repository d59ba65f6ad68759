package handlers

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"tenderdocs/services"
	"tenderdocs/templates"
)

// approachForm is a parsed evaluation approach form submission.
type approachForm struct {
	data      templates.ApproachFormData
	price     float64
	safety    float64
	technical float64
	bands     []services.CriterionBand
}

func parsePercentField(raw, field, label string, errs map[string]string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 100 {
		errs[field] = label + " must be a number between 0 and 100"
		return 0
	}
	return v
}

func parseApproachForm(app *pocketbase.PocketBase, e *core.RequestEvent, excludeID string) (*approachForm, error) {
	if err := e.Request.ParseForm(); err != nil {
		return nil, err
	}

	f := &approachForm{
		data: templates.ApproachFormData{
			ID:        excludeID,
			Name:      strings.TrimSpace(e.Request.FormValue("name")),
			Price:     strings.TrimSpace(e.Request.FormValue("price_percentage")),
			Safety:    strings.TrimSpace(e.Request.FormValue("safety_percentage")),
			Technical: strings.TrimSpace(e.Request.FormValue("technical_percentage")),
			Criteria:  e.Request.FormValue("technical_criteria"),
			Errors:    make(map[string]string),
		},
	}
	errs := f.data.Errors

	if f.data.Name == "" {
		errs["name"] = "Approach name is required"
	} else {
		existing, _ := app.FindRecordsByFilter(
			"evaluation_approaches",
			"name = {:name} && id != {:id}",
			"", 1, 0,
			map[string]any{"name": f.data.Name, "id": excludeID},
		)
		if len(existing) > 0 {
			errs["name"] = "An approach with this name already exists"
		}
	}

	f.price = parsePercentField(f.data.Price, "price_percentage", "Price", errs)
	f.safety = parsePercentField(f.data.Safety, "safety_percentage", "Safety", errs)
	f.technical = parsePercentField(f.data.Technical, "technical_percentage", "Technical", errs)

	f.bands = services.ParseCriteriaLines(f.data.Criteria)
	for _, b := range f.bands {
		if b.Label == "" {
			errs["technical_criteria"] = "Every criteria line needs a label before the colon"
			break
		}
	}

	return f, nil
}

// apply copies the form onto an evaluation_approaches record.
func (f *approachForm) apply(record *core.Record) error {
	criteria, err := services.MarshalTechnicalCriteria(f.bands)
	if err != nil {
		return err
	}
	record.Set("name", f.data.Name)
	record.Set("price_percentage", f.price)
	record.Set("safety_percentage", f.safety)
	record.Set("technical_percentage", f.technical)
	record.Set("technical_criteria", types.JSONRaw(criteria))
	return nil
}

// totalWarning returns a toast message when the weights do not add up to 100.
func (f *approachForm) totalWarning() string {
	total := f.price + f.safety + f.technical
	if total == 100 {
		return ""
	}
	return fmt.Sprintf("Saved, but weights total %s instead of 100%%", services.FormatPercent(total))
}

func HandleApproachCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := templates.ApproachFormData{Errors: make(map[string]string)}
		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		component := templates.ApproachFormPage(data, headerData, sidebarData)
		return component.Render(e.Request.Context(), e.Response)
	}
}

func HandleApproachSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		form, err := parseApproachForm(app, e, "")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		if len(form.data.Errors) > 0 {
			SetToast(e, "warning", "Please fix the errors below")
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component := templates.ApproachFormPage(form.data, headerData, sidebarData)
			return component.Render(e.Request.Context(), e.Response)
		}

		col, err := app.FindCollectionByNameOrId("evaluation_approaches")
		if err != nil {
			log.Printf("approach_create: could not find evaluation_approaches collection: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		if err := form.apply(record); err != nil {
			log.Printf("approach_create: could not encode criteria: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if err := app.Save(record); err != nil {
			log.Printf("approach_create: could not save approach: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		if msg := form.totalWarning(); msg != "" {
			SetToast(e, "warning", msg)
		} else {
			SetToast(e, "success", "Evaluation approach created")
		}
		return redirect(e, "/evaluation-approaches")
	}
}
