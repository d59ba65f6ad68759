package handlers

import (
	"log"
	"strings"

	"github.com/pocketbase/pocketbase"

	"tenderdocs/collections"
	"tenderdocs/services"
)

func statusBadgeClass(status string) string {
	switch status {
	case "submit evaluation criteria":
		return "badge-warning"
	case "in evaluation":
		return "badge-info"
	case "completed":
		return "badge-success"
	default:
		return "badge-ghost"
	}
}

func validStatus(status string) bool {
	for _, s := range collections.ProjectStatusOptions {
		if status == s {
			return true
		}
	}
	return false
}

func statusOptions() []services.Option {
	opts := make([]services.Option, len(collections.ProjectStatusOptions))
	for i, s := range collections.ProjectStatusOptions {
		opts[i] = services.Option{Value: s, Label: strings.ToUpper(s[:1]) + s[1:]}
	}
	return opts
}

// nameOptions lists the records of a collection as select options, ordered
// by name.
func nameOptions(app *pocketbase.PocketBase, collection string) []services.Option {
	records, err := app.FindRecordsByFilter(collection, "id != ''", "name", 0, 0)
	if err != nil {
		log.Printf("options: could not list %s: %v", collection, err)
		return nil
	}
	opts := make([]services.Option, 0, len(records))
	for _, rec := range records {
		opts = append(opts, services.Option{Value: rec.Id, Label: rec.GetString("name")})
	}
	return opts
}

// nameTaken reports whether another record of the collection already uses
// name.
func nameTaken(app *pocketbase.PocketBase, collection, name, excludeID string) bool {
	existing, err := app.FindRecordsByFilter(
		collection,
		"name = {:name} && id != {:id}",
		"", 1, 0,
		map[string]any{"name": name, "id": excludeID},
	)
	if err != nil {
		log.Printf("options: could not check %s names: %v", collection, err)
		return false
	}
	return len(existing) > 0
}

// sanitizeFilename replaces characters that are unsafe in a download name.
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-", `"`, "")
	return r.Replace(name)
}
