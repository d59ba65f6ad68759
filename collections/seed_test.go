package collections_test

import (
	"testing"

	"tenderdocs/collections"
	"tenderdocs/testhelpers"
)

func TestSeed_PopulatesEmptyCollections(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	approaches, err := app.FindAllRecords("evaluation_approaches")
	if err != nil {
		t.Fatalf("FindAllRecords() error = %v", err)
	}
	if len(approaches) != 3 {
		t.Errorf("approaches = %d, want 3", len(approaches))
	}

	balanced, err := app.FindFirstRecordByData("evaluation_approaches", "name", "Balanced")
	if err != nil {
		t.Fatalf("Balanced approach not seeded: %v", err)
	}
	if got := balanced.GetFloat("price_percentage"); got != 60 {
		t.Errorf("Balanced price_percentage = %v, want 60", got)
	}
	criteria := balanced.GetString("technical_criteria")
	if criteria == "" || criteria[:2] != `{"` {
		t.Errorf("technical_criteria = %q, want a JSON object", criteria)
	}

	templates, _ := app.FindAllRecords("templates")
	if len(templates) != 1 || templates[0].GetString("template_text") == "" {
		t.Errorf("expected one starter template with text, got %d", len(templates))
	}

	projects, _ := app.FindAllRecords("projects")
	if len(projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(projects))
	}
	if projects[0].GetString("evaluation_approach") != balanced.Id {
		t.Error("sample project should reference the Balanced approach")
	}
	if projects[0].GetString("status") != collections.DefaultProjectStatus {
		t.Errorf("status = %q", projects[0].GetString("status"))
	}

	subs, _ := app.FindRecordsByFilter("tender_submissions", "project = {:p}", "sort_order", 0, 0,
		map[string]any{"p": projects[0].Id})
	if len(subs) != 3 {
		t.Errorf("submissions = %d, want 3", len(subs))
	}
	if projects[0].GetInt("suppliers_count") != len(subs) {
		t.Errorf("suppliers_count = %d, want %d", projects[0].GetInt("suppliers_count"), len(subs))
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error = %v", err)
	}
	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}

	for name, want := range map[string]int{
		"evaluation_approaches": 3,
		"templates":             1,
		"projects":              1,
		"tender_submissions":    3,
	} {
		recs, _ := app.FindAllRecords(name)
		if len(recs) != want {
			t.Errorf("%s = %d records after second Seed(), want %d", name, len(recs), want)
		}
	}
}

func TestSeed_SkipsPopulatedCollections(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestProject(t, app, "Existing")

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	projects, _ := app.FindAllRecords("projects")
	if len(projects) != 1 || projects[0].GetString("name") != "Existing" {
		t.Errorf("projects should be left alone, got %d", len(projects))
	}
	approaches, _ := app.FindAllRecords("evaluation_approaches")
	if len(approaches) != 3 {
		t.Errorf("approaches should still be seeded, got %d", len(approaches))
	}
}
