package services

import (
	"errors"
	"time"
)

// ErrTemplateEmpty is returned when a template has neither text nor a source
// document that yields text.
var ErrTemplateEmpty = errors.New("template has no content")

// ProjectData is everything a render needs to know about one project.
type ProjectData struct {
	ID              string
	Name            string
	ClientName      string
	DocumentNo      string
	ReferenceNo     string
	PublicationDate string
	ClosingDate     string
	Description     string
	SuppliersCount  int
	Status          string

	// Parameters holds free-form values stored on the project. They are
	// exposed at the top level of the parameter tree.
	Parameters map[string]any

	Submissions   []TenderSubmission
	Approach      *EvaluationApproach
	ProjectType   *ProjectType
	TenderColumns []TenderColumn
}

// RenderOptions tunes the generated fragments.
type RenderOptions struct {
	// TenderColumns overrides the project's column selection when set.
	TenderColumns          []TenderColumn
	EmptyTenderMessage     string
	EmptyEvaluationMessage string
	Now                    func() time.Time
}

// DefaultRenderOptions returns the layout used by the web surface.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		EmptyTenderMessage:     DefaultEmptyTenderMessage,
		EmptyEvaluationMessage: DefaultEmptyEvaluationMessage,
		Now:                    time.Now,
	}
}

// tenderColumns picks the column layout for p.
func (o RenderOptions) tenderColumns(p ProjectData) []TenderColumn {
	if len(o.TenderColumns) > 0 {
		return o.TenderColumns
	}
	if len(p.TenderColumns) > 0 {
		return p.TenderColumns
	}
	return DefaultTenderColumns
}

func (o RenderOptions) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// BuildParameters assembles the parameter tree for one render. Generated keys
// take precedence over free-form project parameters with the same name.
func BuildParameters(p ProjectData, opts RenderOptions) Value {
	root := make(map[string]Value, len(p.Parameters)+6)
	for k, v := range p.Parameters {
		root[k] = FromAny(v)
	}

	root["project"] = Mapping(map[string]Value{
		"name":             Scalar(p.Name),
		"document_no":      Scalar(p.DocumentNo),
		"reference_no":     Scalar(p.ReferenceNo),
		"publication_date": Scalar(FormatDisplayDate(p.PublicationDate)),
		"closing_date":     Scalar(FormatDisplayDate(p.ClosingDate)),
		"description":      Scalar(p.Description),
		"suppliers_count":  Int(p.SuppliersCount),
		"status":           Scalar(p.Status),
	})
	root["customer"] = Mapping(map[string]Value{
		"Name": Scalar(p.ClientName),
	})

	if p.Approach != nil {
		root["evaluation"] = Mapping(map[string]Value{
			"name":                 Scalar(p.Approach.Name),
			"price_percentage":     Number(p.Approach.PricePercentage),
			"safety_percentage":    Number(p.Approach.SafetyPercentage),
			"technical_percentage": Number(p.Approach.TechnicalPercentage),
			"total_percentage":     Number(p.Approach.TotalPercentage()),
		})
	}

	if p.ProjectType != nil {
		root["project_type"] = Mapping(map[string]Value{
			"name":               Scalar(p.ProjectType.Name),
			"price_percentage":   Number(p.ProjectType.PricePercentage),
			"quality_percentage": Number(p.ProjectType.QualityPercentage),
		})
	}

	root["tender_submissions_table"] = Scalar(TenderSubmissionsTable(p.Submissions, TenderTableOptions{
		Columns:      opts.tenderColumns(p),
		EmptyMessage: opts.EmptyTenderMessage,
	}))
	root["evaluation_criteria_table"] = Scalar(EvaluationCriteriaTable(p.Approach, p.Submissions, opts.EmptyEvaluationMessage))
	root["today"] = Scalar(opts.now().Format("02 Jan 2006"))

	return Mapping(root)
}

// Render merges templateText with the parameter tree built from p. It fails
// only when the template is empty; unresolved placeholders render as empty
// strings. The output is not sanitized.
func Render(templateText string, p ProjectData, opts RenderOptions) (string, error) {
	if templateText == "" {
		return "", ErrTemplateEmpty
	}
	return MergeTemplate(templateText, BuildParameters(p, opts)), nil
}
