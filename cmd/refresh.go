package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute the actuals of all budget lines and raise alerts",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	s, err := connect(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	alerts, err := s.tracker.RefreshAll(cmd.Context())
	if err != nil {
		return err
	}

	for _, a := range alerts {
		log.Warn().
			Str("budget", a.BudgetID.String()).
			Str("type", string(a.Type)).
			Str("severity", string(a.Severity)).
			Msg(a.Message)
	}

	return printJSON(cmd.OutOrStdout(), alerts)
}
