package cmd

import (
	"time"

	"github.com/envelope-zero/analytics/internal/models"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all resources, including deleted ones, as JSON to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	s, err := connect(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	resources, err := models.Export(cmd.Context(), s.db)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), map[string]any{
		"data":         resources,
		"creationTime": time.Now(),
	})
}
