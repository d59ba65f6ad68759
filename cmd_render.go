package main

import (
	"fmt"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/spf13/cobra"

	"tenderdocs/collections"
	"tenderdocs/services"
)

// newRenderCommand merges one template with one project outside the web UI.
func newRenderCommand(app *pocketbase.PocketBase) *cobra.Command {
	var templateID, projectID, out string

	cmd := &cobra.Command{
		Use:          "render",
		Short:        "Render a document template against a project",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			collections.Setup(app)

			preview, err := services.RenderDocument(app, templateID, projectID, services.DefaultRenderOptions())
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), preview.Content)
				return err
			}
			if err := os.WriteFile(out, []byte(preview.Content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s for %s)\n", out, preview.TemplateName, preview.ProjectName)
			return nil
		},
	}

	cmd.Flags().StringVar(&templateID, "template", "", "template record id")
	cmd.Flags().StringVar(&projectID, "project", "", "project record id")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.MarkFlagRequired("template")
	cmd.MarkFlagRequired("project")

	return cmd
}
