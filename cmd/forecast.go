package cmd

import (
	"fmt"

	"github.com/envelope-zero/analytics/internal/budget"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast [budget-id]",
	Short: "Forecast budget consumption and raise forecast alerts",
	Long: `Projects the monthly snapshots of one budget line, or of all budget lines
without an argument. A forecast alert is raised when an overrun is likely.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, args []string) error {
	s, err := connect(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()

	var ids []uuid.UUID
	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid budget ID %q: %w", args[0], err)
		}
		ids = append(ids, id)
	} else {
		budgets, err := s.tracker.Budgets(ctx, budget.Filter{})
		if err != nil {
			return err
		}
		for _, b := range budgets {
			ids = append(ids, b.ID)
		}
	}

	risks := make([]budget.Risk, 0, len(ids))
	for _, id := range ids {
		risk, err := s.tracker.AssessRisk(ctx, id)
		if err != nil {
			return fmt.Errorf("forecasting budget %s: %w", id, err)
		}
		risks = append(risks, risk)
	}

	return printJSON(cmd.OutOrStdout(), risks)
}
