package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// MigrateSubmissionSortOrder gives every tender submission without a
// sort_order a position after its project's existing rows, in creation
// order. Safe to call on every startup -- returns early if nothing to migrate.
func MigrateSubmissionSortOrder(app *pocketbase.PocketBase) error {
	submissionsCol, err := app.FindCollectionByNameOrId("tender_submissions")
	if err != nil {
		return fmt.Errorf("migrate: could not find tender_submissions collection: %w", err)
	}

	unordered, err := app.FindRecordsByFilter(
		submissionsCol,
		"sort_order = 0",
		"created",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query unordered submissions: %w", err)
	}

	if len(unordered) == 0 {
		return nil
	}

	log.Printf("migrate: found %d tender submission(s) without sort_order -- renumbering...\n", len(unordered))

	next := make(map[string]int)
	for _, rec := range unordered {
		projectID := rec.GetString("project")
		if _, ok := next[projectID]; !ok {
			last, err := app.FindRecordsByFilter(
				submissionsCol,
				"project = {:projectId} && sort_order > 0",
				"-sort_order",
				1, 0,
				map[string]any{"projectId": projectID},
			)
			if err == nil && len(last) > 0 {
				next[projectID] = last[0].GetInt("sort_order")
			}
		}

		next[projectID]++
		rec.Set("sort_order", next[projectID])
		if err := app.Save(rec); err != nil {
			log.Printf("migrate: failed to renumber submission %s: %v\n", rec.Id, err)
		}
	}

	return nil
}

// MigrateBlankProjectStatus assigns DefaultProjectStatus to projects saved
// before the status field existed.
func MigrateBlankProjectStatus(app *pocketbase.PocketBase) error {
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("migrate: could not find projects collection: %w", err)
	}

	blank, err := app.FindRecordsByFilter(projectsCol, "status = ''", "", 0, 0, nil)
	if err != nil {
		return fmt.Errorf("migrate: could not query projects without status: %w", err)
	}
	if len(blank) == 0 {
		return nil
	}

	log.Printf("migrate: found %d project(s) without status\n", len(blank))

	return app.RunInTransaction(func(txApp core.App) error {
		for _, rec := range blank {
			rec.Set("status", DefaultProjectStatus)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("migrate: save project %s: %w", rec.Id, err)
			}
		}
		return nil
	})
}
