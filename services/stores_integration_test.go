package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
	"github.com/pocketbase/pocketbase/tools/types"

	"tenderdocs/testhelpers"
)

func TestLoadProjectData(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	approach := testhelpers.CreateTestApproach(t, app, "Balanced", 60, 10, 30,
		`{"Excellent": "Exceeds", "Good": "Meets", "Poor": "Below"}`)
	proj := testhelpers.CreateTestProject(t, app, "Bridge Repair")
	proj.Set("evaluation_approach", approach.Id)
	proj.Set("parameters", types.JSONRaw(`{"site": {"address": "12 Quay St"}}`))
	proj.Set("tender_columns", types.JSONRaw(`["supplier_name", "percentage", "bogus"]`))
	if err := app.Save(proj); err != nil {
		t.Fatalf("save project: %v", err)
	}

	testhelpers.CreateTestSubmission(t, app, proj.Id, 2, "A", 10, "positive")
	testhelpers.CreateTestSubmission(t, app, proj.Id, 1, "B", 30, "negative")
	other := testhelpers.CreateTestProject(t, app, "Other")
	testhelpers.CreateTestSubmission(t, app, other.Id, 1, "Elsewhere", 99, "")

	data, err := LoadProjectData(app, proj.Id)
	if err != nil {
		t.Fatalf("LoadProjectData() error = %v", err)
	}

	if data.Name != "Bridge Repair" || data.ClientName != "Test Client" || data.DocumentNo != "DOC-001" {
		t.Errorf("scalars = %+v", data)
	}
	if len(data.Submissions) != 2 {
		t.Fatalf("Submissions = %d, want 2", len(data.Submissions))
	}
	if data.Submissions[0].SupplierName != "B" {
		t.Errorf("submissions should load in sort_order, first = %q", data.Submissions[0].SupplierName)
	}
	if data.Submissions[0].PercentageSign.Kind != SignNegative {
		t.Errorf("sign = %+v", data.Submissions[0].PercentageSign)
	}
	if data.Approach == nil || data.Approach.Name != "Balanced" {
		t.Fatalf("Approach = %+v", data.Approach)
	}
	if len(data.Approach.TechnicalCriteria) != 3 || data.Approach.TechnicalCriteria[2].Label != "Poor" {
		t.Errorf("criteria = %+v", data.Approach.TechnicalCriteria)
	}
	if len(data.TenderColumns) != 2 || data.TenderColumns[1] != ColumnPercentage {
		t.Errorf("TenderColumns = %v", data.TenderColumns)
	}

	got, err := Render("{{site.address}}", data, fixedOptions())
	if err != nil || got != "12 Quay St" {
		t.Errorf("Render(site.address) = %q, %v", got, err)
	}
}

func TestLoadProjectData_ProjectType(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	pt := testhelpers.CreateTestProjectType(t, app, "Works", 70, 30)
	proj := testhelpers.CreateTestProject(t, app, "Bridge Repair")
	proj.Set("project_type", pt.Id)
	if err := app.Save(proj); err != nil {
		t.Fatalf("save project: %v", err)
	}

	data, err := LoadProjectData(app, proj.Id)
	if err != nil {
		t.Fatalf("LoadProjectData() error = %v", err)
	}
	if data.ProjectType == nil || data.ProjectType.Name != "Works" || data.ProjectType.PricePercentage != 70 {
		t.Fatalf("ProjectType = %+v", data.ProjectType)
	}

	got, err := Render("{{project_type.quality_percentage}}", data, fixedOptions())
	if err != nil || got != "30" {
		t.Errorf("Render(project_type.quality_percentage) = %q, %v", got, err)
	}
}

func TestLoadProjectData_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := LoadProjectData(app, "missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("error = %v, want ErrProjectNotFound", err)
	}
}

func TestLoadTemplateSource(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	tpl := testhelpers.CreateTestTemplate(t, app, "Cover", "<p>{{project.name}}</p>")
	src, err := LoadTemplateSource(app, tpl.Id)
	if err != nil {
		t.Fatalf("LoadTemplateSource() error = %v", err)
	}
	if src.Name != "Cover" || src.Text != "<p>{{project.name}}</p>" {
		t.Errorf("src = %+v", src)
	}

	if _, err := LoadTemplateSource(app, "missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("error = %v, want ErrTemplateNotFound", err)
	}

	blank := testhelpers.CreateTestTemplate(t, app, "Blank", "")
	if _, err := LoadTemplateSource(app, blank.Id); !errors.Is(err, ErrTemplateEmpty) {
		t.Errorf("error = %v, want ErrTemplateEmpty", err)
	}
}

func saveTemplateWithFile(t *testing.T, app core.App, name, fileName string, data []byte) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("templates")
	if err != nil {
		t.Fatalf("find templates: %v", err)
	}
	file, err := filesystem.NewFileFromBytes(data, fileName)
	if err != nil {
		t.Fatalf("NewFileFromBytes() error = %v", err)
	}
	rec := core.NewRecord(col)
	rec.Set("name", name)
	rec.Set("source_file", file)
	if err := app.Save(rec); err != nil {
		t.Fatalf("save template: %v", err)
	}
	return rec
}

func TestLoadTemplateSource_FromDocx(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	data := buildDocx(t, `<w:p><w:r><w:t>Paper for {{project.name}}</w:t></w:r></w:p>`)
	rec := saveTemplateWithFile(t, app, "Word paper", "paper.docx", data)

	src, err := LoadTemplateSource(app, rec.Id)
	if err != nil {
		t.Fatalf("LoadTemplateSource() error = %v", err)
	}
	if src.Text != "Paper for {{project.name}}" {
		t.Errorf("Text = %q", src.Text)
	}
	if !strings.HasSuffix(src.FileName, ".docx") {
		t.Errorf("FileName = %q", src.FileName)
	}
}

func TestLoadTemplateSource_ConversionFailure(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := saveTemplateWithFile(t, app, "Broken", "broken.docx", []byte("not a zip archive"))

	if _, err := LoadTemplateSource(app, rec.Id); !errors.Is(err, ErrDocumentConversion) {
		t.Errorf("error = %v, want ErrDocumentConversion", err)
	}
}

func TestRenderDocument(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Bridge Repair")
	testhelpers.CreateTestSubmission(t, app, proj.Id, 1, "A", 10, "positive")
	testhelpers.CreateTestSubmission(t, app, proj.Id, 2, "B", 30, "negative")
	testhelpers.CreateTestSubmission(t, app, proj.Id, 3, "C", 0, "")
	tpl := testhelpers.CreateTestTemplate(t, app, "TCB", "<h1>{{project.name}}</h1>{{tender_submissions_table}}{{evaluation_criteria_table}}")

	preview, err := RenderDocument(app, tpl.Id, proj.Id, fixedOptions())
	if err != nil {
		t.Fatalf("RenderDocument() error = %v", err)
	}
	if preview.TemplateName != "TCB" || preview.ProjectName != "Bridge Repair" {
		t.Errorf("preview = %+v", preview)
	}
	b := strings.Index(preview.Content, "<td>B</td>")
	a := strings.Index(preview.Content, "<td>A</td>")
	c := strings.Index(preview.Content, "<td>C</td>")
	if b < 0 || !(b < a && a < c) {
		t.Errorf("expected ranking B, A, C:\n%s", preview.Content)
	}
	if !strings.Contains(preview.Content, "No evaluation approach selected.") {
		t.Error("expected evaluation placeholder message")
	}

	if _, err := RenderDocument(app, tpl.Id, "missing", fixedOptions()); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("error = %v, want ErrProjectNotFound", err)
	}
	if _, err := RenderDocument(app, "missing", proj.Id, fixedOptions()); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("error = %v, want ErrTemplateNotFound", err)
	}
}

func TestCommitTenderImport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Import")
	testhelpers.CreateTestSubmission(t, app, proj.Id, 4, "Existing", 1, "")

	rows := []TenderSubmission{
		{SupplierName: "New One", PercentageAdjustment: 2, PercentageSign: ParseSign("positive")},
		{SupplierName: "New Two", PercentageAdjustment: 3},
	}
	n, err := CommitTenderImport(app, proj.Id, rows, false)
	if err != nil {
		t.Fatalf("CommitTenderImport() error = %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	data, _ := LoadProjectData(app, proj.Id)
	if len(data.Submissions) != 3 || data.Submissions[1].SupplierName != "New One" {
		t.Fatalf("submissions after append = %+v", data.Submissions)
	}

	recs, _ := app.FindRecordsByFilter("tender_submissions", "project = {:p}", "sort_order", 0, 0, map[string]any{"p": proj.Id})
	if recs[1].GetInt("sort_order") != 5 || recs[2].GetInt("sort_order") != 6 {
		t.Errorf("sort orders = %d, %d; want 5, 6", recs[1].GetInt("sort_order"), recs[2].GetInt("sort_order"))
	}

	n, err = CommitTenderImport(app, proj.Id, rows[:1], true)
	if err != nil || n != 1 {
		t.Fatalf("CommitTenderImport(replace) = %d, %v", n, err)
	}
	data, _ = LoadProjectData(app, proj.Id)
	if len(data.Submissions) != 1 || data.Submissions[0].SupplierName != "New One" {
		t.Errorf("submissions after replace = %+v", data.Submissions)
	}
}
