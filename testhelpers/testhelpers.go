// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"tenderdocs/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestProject creates a project record with the given name and returns it.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("client_name", "Test Client")
	record.Set("document_no", "DOC-001")
	record.Set("reference_no", "REF-001")
	record.Set("closing_date", "31 Mar 2025")
	record.Set("status", collections.DefaultProjectStatus)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestTemplate creates a template record holding text and returns it.
func CreateTestTemplate(t *testing.T, app *pocketbase.PocketBase, name, text string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("templates")
	if err != nil {
		t.Fatalf("failed to find templates collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("template_text", text)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test template: %v", err)
	}

	return record
}

// CreateTestApproach creates an evaluation approach. criteriaJSON may be empty.
func CreateTestApproach(t *testing.T, app *pocketbase.PocketBase, name string, price, safety, technical float64, criteriaJSON string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("evaluation_approaches")
	if err != nil {
		t.Fatalf("failed to find evaluation_approaches collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("price_percentage", price)
	record.Set("safety_percentage", safety)
	record.Set("technical_percentage", technical)
	if criteriaJSON != "" {
		record.Set("technical_criteria", types.JSONRaw(criteriaJSON))
	}

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test approach: %v", err)
	}

	return record
}

// CreateTestCriterion creates an evaluation_criteria record.
func CreateTestCriterion(t *testing.T, app *pocketbase.PocketBase, name, description, methodology string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("evaluation_criteria")
	if err != nil {
		t.Fatalf("failed to find evaluation_criteria collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("description", description)
	record.Set("detailed_scoring_methodology", methodology)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test criterion: %v", err)
	}

	return record
}

// CreateTestProjectType creates a project_types record.
func CreateTestProjectType(t *testing.T, app *pocketbase.PocketBase, name string, price, quality float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("project_types")
	if err != nil {
		t.Fatalf("failed to find project_types collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("price_percentage", price)
	record.Set("quality_percentage", quality)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project type: %v", err)
	}

	return record
}

// CreateTestSubmission creates a tender submission linked to a project.
func CreateTestSubmission(t *testing.T, app *pocketbase.PocketBase, projectID string, sortOrder int, supplier string, adjustment float64, sign string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("tender_submissions")
	if err != nil {
		t.Fatalf("failed to find tender_submissions collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("sort_order", sortOrder)
	record.Set("supplier_name", supplier)
	record.Set("schedule_of_rates_no", "SOR-01")
	record.Set("response_no", "R-100")
	record.Set("percentage_adjustment", adjustment)
	record.Set("percentage_sign", sign)
	record.Set("entry_date", "20 Mar 2025")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test submission: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHTMLNotContains checks that body contains none of the fragments.
func AssertHTMLNotContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if strings.Contains(body, frag) {
			t.Errorf("expected HTML not to contain %q\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
