package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tenderdocs/services"
)

// HandleTCBPaperPDF downloads the TCB paper of a project as a PDF.
func HandleTCBPaperPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		project, err := services.LoadProjectData(app, projectID)
		if errors.Is(err, services.ErrProjectNotFound) {
			return e.String(http.StatusNotFound, "Project not found")
		}
		if err != nil {
			log.Printf("tcb_paper: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load project")
		}

		pdfBytes, err := services.GenerateTCBPaperPDF(project, services.DefaultRenderOptions())
		if err != nil {
			log.Printf("tcb_paper: generate PDF for %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF")
		}

		filename := sanitizeFilename(project.Name) + "_TCB_Paper.pdf"
		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
