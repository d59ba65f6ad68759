package main

import (
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/collections"
	"tenderdocs/handlers"
)

func main() {
	app := pocketbase.New()

	app.RootCmd.AddCommand(newRenderCommand(app))

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateSubmissionSortOrder(app); err != nil {
			log.Printf("Warning: submission sort order migration failed: %v", err)
		}
		if err := collections.MigrateBlankProjectStatus(app); err != nil {
			log.Printf("Warning: project status migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		// Apply active project middleware globally
		se.Router.BindFunc(handlers.ActiveProjectMiddleware(app))

		// ── Project activation ───────────────────────────────────
		se.Router.POST("/projects/{id}/activate", handlers.HandleProjectActivate(app))
		se.Router.POST("/projects/deactivate", handlers.HandleProjectDeactivate(app))

		// ── Templates ────────────────────────────────────────────
		se.Router.GET("/templates", handlers.HandleTemplateList(app))
		se.Router.GET("/templates/create", handlers.HandleTemplateCreate(app))
		se.Router.POST("/templates", handlers.HandleTemplateSave(app))
		se.Router.GET("/templates/{id}/edit", handlers.HandleTemplateEdit(app))
		se.Router.POST("/templates/{id}/save", handlers.HandleTemplateUpdate(app))
		se.Router.GET("/templates/{id}/download", handlers.HandleTemplateDownload(app))
		se.Router.DELETE("/templates/{id}", handlers.HandleTemplateDelete(app))
		se.Router.GET("/templates/{id}", handlers.HandleTemplateView(app))

		// ── Evaluation approaches ────────────────────────────────
		se.Router.GET("/evaluation-approaches", handlers.HandleApproachList(app))
		se.Router.GET("/evaluation-approaches/create", handlers.HandleApproachCreate(app))
		se.Router.POST("/evaluation-approaches", handlers.HandleApproachSave(app))
		se.Router.GET("/evaluation-approaches/{id}/edit", handlers.HandleApproachEdit(app))
		se.Router.POST("/evaluation-approaches/{id}/save", handlers.HandleApproachUpdate(app))
		se.Router.DELETE("/evaluation-approaches/{id}", handlers.HandleApproachDelete(app))
		se.Router.GET("/api/evaluation-approaches", handlers.HandleApproachAPI(app))

		// ── Evaluation criteria ──────────────────────────────────
		se.Router.GET("/evaluation-criteria", handlers.HandleCriteriaList(app))
		se.Router.GET("/evaluation-criteria/create", handlers.HandleCriterionCreate(app))
		se.Router.POST("/evaluation-criteria", handlers.HandleCriterionSave(app))
		se.Router.GET("/evaluation-criteria/{id}/edit", handlers.HandleCriterionEdit(app))
		se.Router.POST("/evaluation-criteria/{id}/save", handlers.HandleCriterionUpdate(app))
		se.Router.DELETE("/evaluation-criteria/{id}", handlers.HandleCriterionDelete(app))
		se.Router.GET("/api/evaluation-criteria", handlers.HandleCriteriaAPI(app))
		se.Router.POST("/api/evaluation-criteria", handlers.HandleCriterionAPICreate(app))
		se.Router.GET("/api/evaluation-criteria/{id}", handlers.HandleCriterionAPIGet(app))
		se.Router.PUT("/api/evaluation-criteria/{id}", handlers.HandleCriterionAPIUpdate(app))
		se.Router.DELETE("/api/evaluation-criteria/{id}", handlers.HandleCriterionAPIDelete(app))

		// ── Project types ────────────────────────────────────────
		se.Router.GET("/project-types", handlers.HandleProjectTypeList(app))
		se.Router.GET("/project-types/create", handlers.HandleProjectTypeCreate(app))
		se.Router.POST("/project-types", handlers.HandleProjectTypeSave(app))
		se.Router.GET("/project-types/{id}/edit", handlers.HandleProjectTypeEdit(app))
		se.Router.POST("/project-types/{id}/save", handlers.HandleProjectTypeUpdate(app))
		se.Router.DELETE("/project-types/{id}", handlers.HandleProjectTypeDelete(app))
		se.Router.GET("/api/project-types", handlers.HandleProjectTypeAPI(app))
		se.Router.POST("/api/project-types", handlers.HandleProjectTypeAPICreate(app))
		se.Router.GET("/api/project-types/{id}", handlers.HandleProjectTypeAPIGet(app))
		se.Router.PUT("/api/project-types/{id}", handlers.HandleProjectTypeAPIUpdate(app))
		se.Router.DELETE("/api/project-types/{id}", handlers.HandleProjectTypeAPIDelete(app))

		// ── Project CRUD ─────────────────────────────────────────
		se.Router.GET("/projects", handlers.HandleProjectList(app))
		se.Router.GET("/projects/create", handlers.HandleProjectCreate(app))
		se.Router.POST("/projects", handlers.HandleProjectSave(app))
		se.Router.GET("/projects/{id}/edit", handlers.HandleProjectEdit(app))
		se.Router.POST("/projects/{id}/save", handlers.HandleProjectUpdate(app))
		se.Router.DELETE("/projects/{id}", handlers.HandleProjectDelete(app))
		se.Router.GET("/projects/{id}/settings", handlers.HandleProjectSettings(app))
		se.Router.POST("/projects/{id}/settings", handlers.HandleProjectSettingsSave(app))
		se.Router.GET("/projects/{id}", handlers.HandleProjectView(app))

		// ── Tender submissions ───────────────────────────────────
		se.Router.POST("/projects/{id}/submissions", handlers.HandleSubmissionAdd(app))
		se.Router.DELETE("/projects/{id}/submissions/{submissionId}", handlers.HandleSubmissionDelete(app))
		se.Router.POST("/projects/{id}/submissions/import", handlers.HandleSubmissionImportValidate(app))
		se.Router.POST("/projects/{id}/submissions/import/commit", handlers.HandleSubmissionImportCommit(app))
		se.Router.GET("/projects/{id}/submissions/import/template", handlers.HandleSubmissionImportTemplate(app))
		se.Router.GET("/projects/{id}/submissions/export", handlers.HandleSubmissionExport(app))

		// ── Documents ────────────────────────────────────────────
		se.Router.GET("/projects/{id}/tcb-paper/pdf", handlers.HandleTCBPaperPDF(app))
		se.Router.POST("/api/documents/preview", handlers.HandleDocumentPreviewAPI(app))
		se.Router.GET("/documents/preview", handlers.HandleDocumentPreviewPage(app))
		se.Router.POST("/documents/preview", handlers.HandleDocumentPreviewRender(app))

		// Redirect home to projects list
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/projects")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
