package collections_test

import (
	"testing"

	"tenderdocs/collections"
	"tenderdocs/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"templates",
	"evaluation_approaches",
	"evaluation_criteria",
	"project_types",
	"projects",
	"tender_submissions",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func assertFields(t *testing.T, col *core.Collection, fields ...string) {
	t.Helper()
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("%s: missing field %q", col.Name, f)
		}
	}
}

func TestSetup_TemplatesFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("templates")

	assertFields(t, col, "name", "template_text", "source_file", "created", "updated")

	if ff, ok := col.Fields.GetByName("source_file").(*core.FileField); !ok {
		t.Error("source_file is not a FileField")
	} else if ff.MaxSelect != 1 {
		t.Errorf("source_file MaxSelect = %d, want 1", ff.MaxSelect)
	}
}

func TestSetup_EvaluationApproachesFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("evaluation_approaches")

	assertFields(t, col, "name", "price_percentage", "safety_percentage", "technical_percentage", "technical_criteria")

	if _, ok := col.Fields.GetByName("technical_criteria").(*core.JSONField); !ok {
		t.Error("technical_criteria is not a JSONField")
	}
}

func TestSetup_EvaluationCriteriaFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("evaluation_criteria")

	assertFields(t, col, "name", "description", "detailed_scoring_methodology", "created", "updated")

	if tf, ok := col.Fields.GetByName("detailed_scoring_methodology").(*core.TextField); !ok || !tf.Required {
		t.Error("detailed_scoring_methodology should be a required TextField")
	}
	if col.GetIndex("idx_evaluation_criteria_name") == "" {
		t.Error("expected a unique index on evaluation_criteria.name")
	}
}

func TestSetup_ProjectTypesFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("project_types")

	assertFields(t, col, "name", "price_percentage", "quality_percentage", "created", "updated")

	if col.GetIndex("idx_project_types_name") == "" {
		t.Error("expected a unique index on project_types.name")
	}
}

func TestSetup_ProjectTypeFieldAddedToExistingProjects(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("projects")

	col.Fields.RemoveByName("project_type")
	if err := app.Save(col); err != nil {
		t.Fatalf("failed to drop project_type: %v", err)
	}

	collections.Setup(app)

	col, _ = app.FindCollectionByNameOrId("projects")
	typesCol, _ := app.FindCollectionByNameOrId("project_types")
	rf, ok := col.Fields.GetByName("project_type").(*core.RelationField)
	if !ok {
		t.Fatal("project_type was not restored as a RelationField")
	}
	if rf.CollectionId != typesCol.Id || rf.Required {
		t.Errorf("project_type = %+v, want optional relation to project_types", rf)
	}
}

func TestSetup_ProjectsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("projects")

	assertFields(t, col,
		"name", "client_name", "document_no", "reference_no", "publication_date", "closing_date",
		"description", "suppliers_count", "status", "evaluation_approach", "project_type", "parameters",
		"tender_columns", "created", "updated",
	)

	statusField := col.Fields.GetByName("status")
	if sf, ok := statusField.(*core.SelectField); ok {
		expected := map[string]bool{"submit evaluation criteria": true, "in evaluation": true, "completed": true}
		for _, v := range sf.Values {
			if !expected[v] {
				t.Errorf("unexpected status value: %q", v)
			}
			delete(expected, v)
		}
		for v := range expected {
			t.Errorf("missing status value: %q", v)
		}
	} else {
		t.Errorf("status field is not a SelectField")
	}

	approachesCol, _ := app.FindCollectionByNameOrId("evaluation_approaches")
	if rf, ok := col.Fields.GetByName("evaluation_approach").(*core.RelationField); !ok {
		t.Error("evaluation_approach is not a RelationField")
	} else {
		if rf.CollectionId != approachesCol.Id {
			t.Errorf("evaluation_approach points at %s, want %s", rf.CollectionId, approachesCol.Id)
		}
		if rf.Required {
			t.Error("evaluation_approach should be optional")
		}
	}
}

func TestSetup_TenderSubmissionsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("tender_submissions")

	assertFields(t, col,
		"project", "sort_order", "schedule_of_rates_no", "trading_partner_reference_no", "supplier_name",
		"response_no", "schedule_of_rates_description", "percentage_adjustment", "percentage_sign",
		"entry_date", "supplier_remarks",
	)

	if rf, ok := col.Fields.GetByName("project").(*core.RelationField); ok {
		if !rf.CascadeDelete {
			t.Error("tender_submissions.project: expected CascadeDelete=true")
		}
	} else {
		t.Error("project is not a RelationField")
	}
}

func TestSetup_SubmissionCascadeDeleteOnProject(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	proj := testhelpers.CreateTestProject(t, app, "Cascade")
	sub := testhelpers.CreateTestSubmission(t, app, proj.Id, 1, "Acme", 5, "positive")

	if err := app.Delete(proj); err != nil {
		t.Fatalf("failed to delete project: %v", err)
	}

	if _, err := app.FindRecordById("tender_submissions", sub.Id); err == nil {
		t.Error("tender submission should have been cascade-deleted with project")
	}
}
