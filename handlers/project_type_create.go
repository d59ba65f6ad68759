package handlers

import (
	"errors"
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

const errProjectTypeDuplicate = "A project type with this name already exists"

// projectTypeForm is a parsed project type form submission.
type projectTypeForm struct {
	data    templates.ProjectTypeFormData
	price   float64
	quality float64
}

// weightsMessage words a weight validation failure for the user.
func weightsMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrWeightsRequired):
		return "Price and quality percentages are required"
	case errors.Is(err, services.ErrWeightsSum):
		return "Price and quality percentages must sum to 100"
	default:
		return "Percentages must be between 0 and 100"
	}
}

func parseWeightField(raw, field, label string, errs map[string]string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		errs[field] = label + " must be a number"
		return 0
	}
	return v
}

func parseProjectTypeForm(app *pocketbase.PocketBase, e *core.RequestEvent, excludeID string) (*projectTypeForm, error) {
	if err := e.Request.ParseForm(); err != nil {
		return nil, err
	}

	f := &projectTypeForm{
		data: templates.ProjectTypeFormData{
			ID:      excludeID,
			Name:    strings.TrimSpace(e.Request.FormValue("name")),
			Price:   strings.TrimSpace(e.Request.FormValue("price_percentage")),
			Quality: strings.TrimSpace(e.Request.FormValue("quality_percentage")),
			Errors:  make(map[string]string),
		},
	}
	errs := f.data.Errors

	if f.data.Name == "" {
		errs["name"] = "Project type name is required"
	} else if nameTaken(app, "project_types", f.data.Name, excludeID) {
		errs["name"] = errProjectTypeDuplicate
	}

	f.price = parseWeightField(f.data.Price, "price_percentage", "Price", errs)
	f.quality = parseWeightField(f.data.Quality, "quality_percentage", "Quality", errs)
	if errs["price_percentage"] == "" && errs["quality_percentage"] == "" {
		if err := services.ValidateProjectTypeWeights(f.price, f.quality); err != nil {
			errs["weights"] = weightsMessage(err)
		}
	}

	return f, nil
}

// applyProjectType copies name and weights onto a project_types record.
func applyProjectType(record *core.Record, name string, price, quality float64) {
	record.Set("name", name)
	record.Set("price_percentage", price)
	record.Set("quality_percentage", quality)
}

func HandleProjectTypeCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := templates.ProjectTypeFormData{Errors: make(map[string]string)}
		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		component := templates.ProjectTypeFormPage(data, headerData, sidebarData)
		return component.Render(e.Request.Context(), e.Response)
	}
}

func HandleProjectTypeSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		form, err := parseProjectTypeForm(app, e, "")
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

		col, err := app.FindCollectionByNameOrId("project_types")
		if err != nil {
			log.Printf("project_type_create: could not find project_types collection: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		applyProjectType(record, form.data.Name, form.price, form.quality)
		if err := app.Save(record); err != nil {
			log.Printf("project_type_create: could not save project type: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Project type created")
		return redirect(e, "/project-types")
	}
}
