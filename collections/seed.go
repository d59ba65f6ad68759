package collections

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"gopkg.in/yaml.v3"
)

//go:embed seed_data.yaml
var seedYAML []byte

// ── Definition structs ───────────────────────────────────────────────────

type bandDef struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

type approachDef struct {
	Name                string    `yaml:"name"`
	PricePercentage     float64   `yaml:"price_percentage"`
	SafetyPercentage    float64   `yaml:"safety_percentage"`
	TechnicalPercentage float64   `yaml:"technical_percentage"`
	TechnicalCriteria   []bandDef `yaml:"technical_criteria"`
}

type templateDef struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

type submissionDef struct {
	SupplierName              string  `yaml:"supplier_name"`
	ScheduleOfRatesNo         string  `yaml:"schedule_of_rates_no"`
	TradingPartnerReferenceNo string  `yaml:"trading_partner_reference_no"`
	ResponseNo                string  `yaml:"response_no"`
	Description               string  `yaml:"schedule_of_rates_description"`
	PercentageAdjustment      float64 `yaml:"percentage_adjustment"`
	PercentageSign            string  `yaml:"percentage_sign"`
	EntryDate                 string  `yaml:"entry_date"`
	SupplierRemarks           string  `yaml:"supplier_remarks"`
}

type projectDef struct {
	Name            string          `yaml:"name"`
	ClientName      string          `yaml:"client_name"`
	DocumentNo      string          `yaml:"document_no"`
	ReferenceNo     string          `yaml:"reference_no"`
	PublicationDate string          `yaml:"publication_date"`
	ClosingDate     string          `yaml:"closing_date"`
	Description     string          `yaml:"description"`
	Approach        string          `yaml:"approach"`
	Submissions     []submissionDef `yaml:"submissions"`
}

type seedData struct {
	Approaches []approachDef `yaml:"approaches"`
	Templates  []templateDef `yaml:"templates"`
	Projects   []projectDef  `yaml:"projects"`
}

// loadSeedData parses the embedded seed file.
func loadSeedData() (seedData, error) {
	var data seedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return seedData{}, fmt.Errorf("seed: parse seed_data.yaml: %w", err)
	}
	return data, nil
}

// Seed populates evaluation approaches, a starter TCB paper template and a
// sample project. Each collection is only seeded while it is empty, so it is
// safe to call on every startup.
func Seed(app *pocketbase.PocketBase) error {
	data, err := loadSeedData()
	if err != nil {
		return err
	}

	approachIDs, err := seedApproaches(app, data.Approaches)
	if err != nil {
		return err
	}
	if err := seedTemplates(app, data.Templates); err != nil {
		return err
	}
	return seedProjects(app, data.Projects, approachIDs)
}

// isEmpty reports whether the named collection has no records.
func isEmpty(app *pocketbase.PocketBase, name string) (*core.Collection, bool, error) {
	col, err := app.FindCollectionByNameOrId(name)
	if err != nil {
		return nil, false, fmt.Errorf("seed: could not find %s collection: %w", name, err)
	}
	existing, err := app.FindRecordsByFilter(col, "id != ''", "", 1, 0, nil)
	if err != nil {
		return nil, false, fmt.Errorf("seed: could not query %s: %w", name, err)
	}
	return col, len(existing) == 0, nil
}

// seedApproaches inserts the default approaches and returns name → id for
// every approach in the collection.
func seedApproaches(app *pocketbase.PocketBase, defs []approachDef) (map[string]string, error) {
	col, empty, err := isEmpty(app, "evaluation_approaches")
	if err != nil {
		return nil, err
	}

	if empty {
		log.Println("seed: evaluation_approaches collection is empty – inserting defaults …")
		for _, def := range defs {
			criteria, err := orderedCriteriaJSON(def.TechnicalCriteria)
			if err != nil {
				return nil, fmt.Errorf("seed: approach %q: %w", def.Name, err)
			}
			rec := core.NewRecord(col)
			rec.Set("name", def.Name)
			rec.Set("price_percentage", def.PricePercentage)
			rec.Set("safety_percentage", def.SafetyPercentage)
			rec.Set("technical_percentage", def.TechnicalPercentage)
			rec.Set("technical_criteria", criteria)
			if err := app.Save(rec); err != nil {
				return nil, fmt.Errorf("seed: save approach %q: %w", def.Name, err)
			}
		}
	}

	all, err := app.FindAllRecords(col)
	if err != nil {
		return nil, fmt.Errorf("seed: could not query evaluation_approaches: %w", err)
	}
	ids := make(map[string]string, len(all))
	for _, rec := range all {
		ids[rec.GetString("name")] = rec.Id
	}
	return ids, nil
}

func seedTemplates(app *pocketbase.PocketBase, defs []templateDef) error {
	col, empty, err := isEmpty(app, "templates")
	if err != nil || !empty {
		return err
	}

	log.Println("seed: templates collection is empty – inserting starter template …")
	for _, def := range defs {
		rec := core.NewRecord(col)
		rec.Set("name", def.Name)
		rec.Set("template_text", def.Text)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save template %q: %w", def.Name, err)
		}
	}
	return nil
}

func seedProjects(app *pocketbase.PocketBase, defs []projectDef, approachIDs map[string]string) error {
	projectsCol, empty, err := isEmpty(app, "projects")
	if err != nil || !empty {
		return err
	}
	submissionsCol, err := app.FindCollectionByNameOrId("tender_submissions")
	if err != nil {
		return fmt.Errorf("seed: could not find tender_submissions collection: %w", err)
	}

	log.Println("seed: projects collection is empty – inserting sample project …")

	return app.RunInTransaction(func(txApp core.App) error {
		for _, def := range defs {
			proj := core.NewRecord(projectsCol)
			proj.Set("name", def.Name)
			proj.Set("client_name", def.ClientName)
			proj.Set("document_no", def.DocumentNo)
			proj.Set("reference_no", def.ReferenceNo)
			proj.Set("publication_date", def.PublicationDate)
			proj.Set("closing_date", def.ClosingDate)
			proj.Set("description", def.Description)
			proj.Set("suppliers_count", len(def.Submissions))
			proj.Set("status", DefaultProjectStatus)
			if id, ok := approachIDs[def.Approach]; ok {
				proj.Set("evaluation_approach", id)
			}
			if err := txApp.Save(proj); err != nil {
				return fmt.Errorf("seed: save project %q: %w", def.Name, err)
			}

			for i, s := range def.Submissions {
				rec := core.NewRecord(submissionsCol)
				rec.Set("project", proj.Id)
				rec.Set("sort_order", i+1)
				rec.Set("supplier_name", s.SupplierName)
				rec.Set("schedule_of_rates_no", s.ScheduleOfRatesNo)
				rec.Set("trading_partner_reference_no", s.TradingPartnerReferenceNo)
				rec.Set("response_no", s.ResponseNo)
				rec.Set("schedule_of_rates_description", s.Description)
				rec.Set("percentage_adjustment", s.PercentageAdjustment)
				rec.Set("percentage_sign", s.PercentageSign)
				rec.Set("entry_date", s.EntryDate)
				rec.Set("supplier_remarks", s.SupplierRemarks)
				if err := txApp.Save(rec); err != nil {
					return fmt.Errorf("seed: save submission %q: %w", s.SupplierName, err)
				}
			}
		}
		return nil
	})
}

// orderedCriteriaJSON encodes bands as a JSON object without losing their
// order, which a map round-trip would.
func orderedCriteriaJSON(bands []bandDef) (types.JSONRaw, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range bands {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b.Description)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return types.JSONRaw(buf.Bytes()), nil
}
