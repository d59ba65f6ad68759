package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/templates"
)

type contextKey string

const ActiveProjectKey contextKey = "activeProject"
const HeaderDataKey contextKey = "headerData"
const SidebarDataKey contextKey = "sidebarData"

// activeProjectCookie holds the id of the project selected in the header.
const activeProjectCookie = "active_project"

// GetActiveProject extracts the active project from the request context.
func GetActiveProject(r *http.Request) *templates.ActiveProject {
	if val, ok := r.Context().Value(ActiveProjectKey).(*templates.ActiveProject); ok {
		return val
	}
	return nil
}

// GetHeaderData extracts the pre-built HeaderData from the request context.
func GetHeaderData(r *http.Request) templates.HeaderData {
	if val, ok := r.Context().Value(HeaderDataKey).(templates.HeaderData); ok {
		return val
	}
	return templates.HeaderData{}
}

// GetSidebarData extracts the pre-built SidebarData from the request context.
func GetSidebarData(r *http.Request) templates.SidebarData {
	if val, ok := r.Context().Value(SidebarDataKey).(templates.SidebarData); ok {
		return val
	}
	return templates.SidebarData{}
}

func clearActiveProjectCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   activeProjectCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// ActiveProjectMiddleware resolves the active_project cookie and stores the
// active project, header data and sidebar data in the request context. A
// cookie naming a deleted project is cleared.
func ActiveProjectMiddleware(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var activeProj *templates.ActiveProject

		if cookie, err := e.Request.Cookie(activeProjectCookie); err == nil && cookie.Value != "" {
			rec, err := app.FindRecordById("projects", cookie.Value)
			if err == nil {
				activeProj = &templates.ActiveProject{
					ID:   rec.Id,
					Name: rec.GetString("name"),
				}
			} else {
				log.Printf("middleware: active project %s not found, clearing cookie", cookie.Value)
				clearActiveProjectCookie(e.Response)
			}
		}

		var selectorItems []templates.ProjectSelectorItem
		records, err := app.FindRecordsByFilter("projects", "id != ''", "name", 0, 0)
		if err != nil {
			log.Printf("middleware: could not list projects: %v", err)
		}
		for _, rec := range records {
			selectorItems = append(selectorItems, templates.ProjectSelectorItem{
				ID:       rec.Id,
				Name:     rec.GetString("name"),
				Client:   rec.GetString("client_name"),
				IsActive: activeProj != nil && rec.Id == activeProj.ID,
			})
		}

		headerData := templates.HeaderData{
			ActiveProject: activeProj,
			Projects:      selectorItems,
		}

		ctx := context.WithValue(e.Request.Context(), ActiveProjectKey, activeProj)
		ctx = context.WithValue(ctx, HeaderDataKey, headerData)
		e.Request = e.Request.WithContext(ctx)

		// Sidebar data reads the active project back out of the context.
		sidebarData := BuildSidebarData(e.Request, app)
		ctx = context.WithValue(e.Request.Context(), SidebarDataKey, sidebarData)
		e.Request = e.Request.WithContext(ctx)

		return e.Next()
	}
}
