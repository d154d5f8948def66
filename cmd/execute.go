package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/envelope-zero/analytics/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var flagAsOf string

var executeCmd = &cobra.Command{
	Use:   "execute [rule-id]",
	Short: "Execute one allocation rule or all rules that are due",
	Long: `Without an argument, all active rules whose next execution is due are
executed. Run this from cron or a systemd timer to execute scheduled rules.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExecute,
}

func init() {
	executeCmd.Flags().StringVar(&flagAsOf, "as-of", "", "execution date (YYYY-MM-DD or RFC 3339), defaults to now")
	rootCmd.AddCommand(executeCmd)
}

// parseAsOf parses a date or timestamp. An empty value returns now.
func parseAsOf(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--as-of must be a date or RFC 3339 timestamp, got %q", value)
	}
	return t, nil
}

func runExecute(cmd *cobra.Command, args []string) error {
	asOf, err := parseAsOf(flagAsOf, time.Now())
	if err != nil {
		return err
	}

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
			return fmt.Errorf("invalid rule ID %q: %w", args[0], err)
		}
		ids = append(ids, id)
	} else {
		due, err := s.engine.DueRules(ctx, asOf)
		if err != nil {
			return err
		}
		for _, rule := range due {
			ids = append(ids, rule.ID)
		}
		log.Info().Int("rules", len(ids)).Time("asOf", asOf).Msg("executing due rules")
	}

	executions, err := executeRules(ctx, s, ids, asOf)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), executions)
}

// executeRules executes the rules in order. Rules that cannot be executed
// are logged and skipped, any other error aborts.
func executeRules(ctx context.Context, s *services, ids []uuid.UUID, asOf time.Time) ([]models.AllocationExecution, error) {
	executions := make([]models.AllocationExecution, 0, len(ids))
	for _, id := range ids {
		execution, err := s.engine.ExecuteRule(ctx, id, asOf)
		if errors.Is(err, models.ErrPrecondition) {
			log.Warn().Str("rule", id.String()).Err(err).Msg("rule not executed")
			executions = append(executions, execution)
			continue
		}
		if err != nil {
			return executions, fmt.Errorf("executing rule %s: %w", id, err)
		}

		log.Info().
			Str("rule", id.String()).
			Str("period", execution.Period).
			Str("status", string(execution.Status)).
			Int("allocated", execution.EntriesAllocated).
			Int("processed", execution.EntriesProcessed).
			Msg("rule executed")
		executions = append(executions, execution)
	}

	return executions, nil
}
