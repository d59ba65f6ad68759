package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

var (
	// ErrTemplateNotFound means no template record has the requested id.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrProjectNotFound means no project record has the requested id.
	ErrProjectNotFound = errors.New("project not found")
)

// TemplateSource is a template's name and the text placeholders are
// resolved against.
type TemplateSource struct {
	ID       string
	Name     string
	Text     string
	FileName string
}

// LoadTemplateSource fetches a template. When the stored text is blank and
// a source file is attached, the file is downloaded and converted to text.
func LoadTemplateSource(app core.App, templateID string) (TemplateSource, error) {
	rec, err := app.FindRecordById("templates", templateID)
	if err != nil {
		return TemplateSource{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}

	src := TemplateSource{
		ID:       rec.Id,
		Name:     rec.GetString("name"),
		Text:     rec.GetString("template_text"),
		FileName: rec.GetString("source_file"),
	}
	if strings.TrimSpace(src.Text) != "" {
		return src, nil
	}
	if src.FileName == "" {
		return src, ErrTemplateEmpty
	}

	data, err := ReadTemplateFile(app, rec)
	if err != nil {
		return src, fmt.Errorf("%w: %v", ErrDocumentConversion, err)
	}
	text, err := ExtractDocumentText(src.FileName, data)
	if err != nil {
		return src, err
	}
	if strings.TrimSpace(text) == "" {
		return src, ErrTemplateEmpty
	}
	src.Text = text
	return src, nil
}

// ReadTemplateFile downloads the source file attached to a template record.
func ReadTemplateFile(app core.App, rec *core.Record) ([]byte, error) {
	name := rec.GetString("source_file")
	if name == "" {
		return nil, fmt.Errorf("template %s has no source file", rec.Id)
	}

	fsys, err := app.NewFilesystem()
	if err != nil {
		return nil, fmt.Errorf("open filesystem: %w", err)
	}
	defer fsys.Close()

	r, err := fsys.GetReader(rec.BaseFilesPath() + "/" + name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// LoadProjectData fetches a project with its tender submissions (in
// sort_order), its evaluation approach and its project type, when linked.
func LoadProjectData(app core.App, projectID string) (ProjectData, error) {
	rec, err := app.FindRecordById("projects", projectID)
	if err != nil {
		return ProjectData{}, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}

	data := ProjectFromRecord(rec)

	submissions, err := app.FindRecordsByFilter(
		"tender_submissions",
		"project = {:projectId}",
		"sort_order,created", 0, 0,
		map[string]any{"projectId": projectID},
	)
	if err != nil {
		return ProjectData{}, fmt.Errorf("load submissions for %s: %w", projectID, err)
	}
	for _, s := range submissions {
		data.Submissions = append(data.Submissions, SubmissionFromRecord(s))
	}

	if approachID := rec.GetString("evaluation_approach"); approachID != "" {
		approachRec, err := app.FindRecordById("evaluation_approaches", approachID)
		if err != nil {
			log.Printf("stores: project %s references missing approach %s: %v", projectID, approachID, err)
		} else {
			approach := ApproachFromRecord(approachRec)
			data.Approach = &approach
		}
	}

	if typeID := rec.GetString("project_type"); typeID != "" {
		typeRec, err := app.FindRecordById("project_types", typeID)
		if err != nil {
			log.Printf("stores: project %s references missing project type %s: %v", projectID, typeID, err)
		} else {
			projectType := ProjectTypeFromRecord(typeRec)
			data.ProjectType = &projectType
		}
	}

	return data, nil
}

// ProjectFromRecord maps the scalar fields of a projects record.
func ProjectFromRecord(rec *core.Record) ProjectData {
	data := ProjectData{
		ID:              rec.Id,
		Name:            rec.GetString("name"),
		ClientName:      rec.GetString("client_name"),
		DocumentNo:      rec.GetString("document_no"),
		ReferenceNo:     rec.GetString("reference_no"),
		PublicationDate: rec.GetString("publication_date"),
		ClosingDate:     rec.GetString("closing_date"),
		Description:     rec.GetString("description"),
		SuppliersCount:  rec.GetInt("suppliers_count"),
		Status:          rec.GetString("status"),
		TenderColumns:   ProjectTenderColumns(rec),
	}

	if raw := strings.TrimSpace(rec.GetString("parameters")); raw != "" && raw != "null" {
		var params map[string]any
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			log.Printf("stores: project %s has invalid parameters JSON: %v", rec.Id, err)
		} else {
			data.Parameters = params
		}
	}
	return data
}

// ProjectTenderColumns returns the column layout saved on a project, or the
// default layout.
func ProjectTenderColumns(rec *core.Record) []TenderColumn {
	var keys []string
	if raw := strings.TrimSpace(rec.GetString("tender_columns")); raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &keys); err != nil {
			log.Printf("stores: project %s has invalid tender_columns JSON: %v", rec.Id, err)
		}
	}
	return ParseTenderColumns(keys)
}

// SubmissionFromRecord maps a tender_submissions record.
func SubmissionFromRecord(rec *core.Record) TenderSubmission {
	return TenderSubmission{
		ID:                         rec.Id,
		ScheduleOfRatesNo:          rec.GetString("schedule_of_rates_no"),
		TradingPartnerReferenceNo:  rec.GetString("trading_partner_reference_no"),
		SupplierName:               rec.GetString("supplier_name"),
		ResponseNo:                 rec.GetString("response_no"),
		ScheduleOfRatesDescription: rec.GetString("schedule_of_rates_description"),
		PercentageAdjustment:       rec.GetFloat("percentage_adjustment"),
		PercentageSign:             ParseSign(rec.GetString("percentage_sign")),
		EntryDate:                  rec.GetString("entry_date"),
		Remarks:                    rec.GetString("supplier_remarks"),
	}
}

// ApproachFromRecord maps an evaluation_approaches record. Malformed
// technical criteria are logged and treated as empty.
func ApproachFromRecord(rec *core.Record) EvaluationApproach {
	bands, err := ParseTechnicalCriteria([]byte(rec.GetString("technical_criteria")))
	if err != nil {
		log.Printf("stores: approach %s: %v", rec.Id, err)
	}
	return EvaluationApproach{
		ID:                  rec.Id,
		Name:                rec.GetString("name"),
		PricePercentage:     rec.GetFloat("price_percentage"),
		SafetyPercentage:    rec.GetFloat("safety_percentage"),
		TechnicalPercentage: rec.GetFloat("technical_percentage"),
		TechnicalCriteria:   bands,
	}
}

// DocumentPreview is the result of rendering a template for a project.
type DocumentPreview struct {
	TemplateName string `json:"templateName"`
	ProjectName  string `json:"projectName"`
	Content      string `json:"content"`
}

// RenderDocument loads both records and merges them. Errors wrap
// ErrTemplateNotFound, ErrProjectNotFound, ErrTemplateEmpty or
// ErrDocumentConversion so callers can tell them apart.
func RenderDocument(app core.App, templateID, projectID string, opts RenderOptions) (DocumentPreview, error) {
	src, err := LoadTemplateSource(app, templateID)
	if err != nil {
		return DocumentPreview{}, err
	}
	project, err := LoadProjectData(app, projectID)
	if err != nil {
		return DocumentPreview{}, err
	}

	content, err := Render(src.Text, project, opts)
	if err != nil {
		return DocumentPreview{}, err
	}
	return DocumentPreview{
		TemplateName: src.Name,
		ProjectName:  project.Name,
		Content:      content,
	}, nil
}
