package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ProjectStatusOptions are the workflow states a project moves through.
var ProjectStatusOptions = []string{"submit evaluation criteria", "in evaluation", "completed"}

// DefaultProjectStatus is assigned to new projects.
const DefaultProjectStatus = "submit evaluation criteria"

// Setup programmatically creates/ensures the templates, evaluation_approaches,
// evaluation_criteria, project_types, projects and tender_submissions
// collections exist.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, "templates", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.EditorField{Name: "template_text", MaxSize: 5 << 20})
		c.Fields.Add(&core.FileField{
			Name:      "source_file",
			MaxSelect: 1,
			MaxSize:   10 << 20,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	approaches := ensureCollection(app, "evaluation_approaches", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.NumberField{Name: "price_percentage"})
		c.Fields.Add(&core.NumberField{Name: "safety_percentage"})
		c.Fields.Add(&core.NumberField{Name: "technical_percentage"})
		c.Fields.Add(&core.JSONField{Name: "technical_criteria"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "evaluation_criteria", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.TextField{Name: "description", Max: 5000})
		c.Fields.Add(&core.TextField{Name: "detailed_scoring_methodology", Required: true, Max: 20000})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_evaluation_criteria_name", true, "name", "")
	})

	projectTypes := ensureCollection(app, "project_types", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.NumberField{Name: "price_percentage"})
		c.Fields.Add(&core.NumberField{Name: "quality_percentage"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_project_types_name", true, "name", "")
	})

	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 300})
		c.Fields.Add(&core.TextField{Name: "client_name"})
		c.Fields.Add(&core.TextField{Name: "document_no"})
		c.Fields.Add(&core.TextField{Name: "reference_no"})
		c.Fields.Add(&core.TextField{Name: "publication_date"})
		c.Fields.Add(&core.TextField{Name: "closing_date"})
		c.Fields.Add(&core.TextField{Name: "description", Max: 20000})
		c.Fields.Add(&core.NumberField{Name: "suppliers_count", OnlyInt: true})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    ProjectStatusOptions,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "evaluation_approach",
			CollectionId: approaches.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.JSONField{Name: "parameters"})
		c.Fields.Add(&core.JSONField{Name: "tender_columns"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureField(app, projects, &core.RelationField{
		Name:         "project_type",
		CollectionId: projectTypes.Id,
		MaxSelect:    1,
	})

	ensureCollection(app, "tender_submissions", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.TextField{Name: "schedule_of_rates_no"})
		c.Fields.Add(&core.TextField{Name: "trading_partner_reference_no"})
		c.Fields.Add(&core.TextField{Name: "supplier_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "response_no"})
		c.Fields.Add(&core.TextField{Name: "schedule_of_rates_description", Max: 20000})
		c.Fields.Add(&core.NumberField{Name: "percentage_adjustment"})
		c.Fields.Add(&core.TextField{Name: "percentage_sign"})
		c.Fields.Add(&core.TextField{Name: "entry_date"})
		c.Fields.Add(&core.TextField{Name: "supplier_remarks", Max: 20000})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}

// ensureField adds field to an existing collection when no field with the
// same name is present yet.
func ensureField(app *pocketbase.PocketBase, collection *core.Collection, field core.Field) {
	if collection.Fields.GetByName(field.GetName()) != nil {
		return
	}

	collection.Fields.Add(field)
	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to add field %q to %q: %v", field.GetName(), collection.Name, err)
	}

	fmt.Printf("Added field %q to collection %q\n", field.GetName(), collection.Name)
}
