package handlers

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"

	"tenderdocs/templates"
)

var templateFileExtensions = []string{".docx", ".xlsx", ".html", ".htm", ".txt"}

// templateForm is a parsed and validated template form submission.
type templateForm struct {
	name   string
	text   string
	file   *multipart.FileHeader
	errors map[string]string
}

// parseTemplateForm reads the template form. The form may be multipart (with
// a source file) or urlencoded. hasFile reports whether the record being
// edited already carries a source file.
func parseTemplateForm(app *pocketbase.PocketBase, e *core.RequestEvent, excludeID string, hasFile bool) (*templateForm, error) {
	if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		if err := e.Request.ParseForm(); err != nil {
			return nil, err
		}
	}

	form := &templateForm{
		name:   strings.TrimSpace(e.Request.FormValue("name")),
		text:   e.Request.FormValue("template_text"),
		errors: make(map[string]string),
	}

	if e.Request.MultipartForm != nil {
		if files := e.Request.MultipartForm.File["source_file"]; len(files) > 0 && files[0].Size > 0 {
			form.file = files[0]
		}
	}

	if form.name == "" {
		form.errors["name"] = "Template name is required"
	} else {
		existing, _ := app.FindRecordsByFilter(
			"templates",
			"name = {:name} && id != {:id}",
			"", 1, 0,
			map[string]any{"name": form.name, "id": excludeID},
		)
		if len(existing) > 0 {
			form.errors["name"] = "A template with this name already exists"
		}
	}

	if form.file != nil {
		ext := strings.ToLower(filepath.Ext(form.file.Filename))
		allowed := false
		for _, x := range templateFileExtensions {
			if ext == x {
				allowed = true
			}
		}
		if !allowed {
			form.errors["source_file"] = "Upload a .docx, .xlsx, .html or .txt file"
		}
	}

	if strings.TrimSpace(form.text) == "" && form.file == nil && !hasFile {
		form.errors["template_text"] = "Enter template text or upload a source document"
	}

	return form, nil
}

// apply copies the form onto a templates record.
func (f *templateForm) apply(record *core.Record) error {
	record.Set("name", f.name)
	record.Set("template_text", f.text)
	if f.file != nil {
		file, err := filesystem.NewFileFromMultipart(f.file)
		if err != nil {
			return err
		}
		record.Set("source_file", file)
	}
	return nil
}

func HandleTemplateCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := templates.TemplateFormData{Errors: make(map[string]string)}
		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		component := templates.TemplateFormPage(data, headerData, sidebarData)
		return component.Render(e.Request.Context(), e.Response)
	}
}

func HandleTemplateSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		form, err := parseTemplateForm(app, e, "", false)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		if len(form.errors) > 0 {
			SetToast(e, "warning", "Please fix the errors below")
			data := templates.TemplateFormData{
				Name:   form.name,
				Text:   form.text,
				Errors: form.errors,
			}
			headerData := GetHeaderData(e.Request)
			sidebarData := GetSidebarData(e.Request)
			component := templates.TemplateFormPage(data, headerData, sidebarData)
			return component.Render(e.Request.Context(), e.Response)
		}

		col, err := app.FindCollectionByNameOrId("templates")
		if err != nil {
			log.Printf("template_create: could not find templates collection: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		if err := form.apply(record); err != nil {
			log.Printf("template_create: could not read upload: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "Could not read the uploaded file")
		}
		if err := app.Save(record); err != nil {
			log.Printf("template_create: could not save template: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Template created successfully")
		return redirect(e, "/templates/"+record.Id)
	}
}
