package allocation

import (
	"fmt"
	"time"

	"github.com/envelope-zero/analytics/internal/models"
	"github.com/envelope-zero/analytics/internal/types"
	"github.com/robfig/cron/v3"
)

// Scheduler computes when a rule is due next. It never triggers executions.
type Scheduler interface {
	Next(schedule models.Schedule, from time.Time) *time.Time
}

// CronSpecs are the cron expressions for the recurring schedules.
type CronSpecs struct {
	Daily   string `yaml:"daily" toml:"daily"`
	Weekly  string `yaml:"weekly" toml:"weekly"`
	Monthly string `yaml:"monthly" toml:"monthly"`
}

// DefaultCronSpecs run daily rules at 02:00, weekly rules on Mondays at 03:00
// and monthly rules on the first of the month at 04:00.
var DefaultCronSpecs = CronSpecs{
	Daily:   "0 2 * * *",
	Weekly:  "0 3 * * 1",
	Monthly: "0 4 1 * *",
}

// CronScheduler computes next executions from cron expressions.
type CronScheduler struct {
	schedules map[models.Schedule]cron.Schedule
}

// NewCronScheduler parses the cron specs. Empty specs use the defaults.
func NewCronScheduler(specs CronSpecs) (*CronScheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	s := &CronScheduler{schedules: make(map[models.Schedule]cron.Schedule, 3)}
	for _, item := range []struct {
		schedule models.Schedule
		spec     string
		fallback string
	}{
		{models.ScheduleDaily, specs.Daily, DefaultCronSpecs.Daily},
		{models.ScheduleWeekly, specs.Weekly, DefaultCronSpecs.Weekly},
		{models.ScheduleMonthly, specs.Monthly, DefaultCronSpecs.Monthly},
	} {
		spec := item.spec
		if spec == "" {
			spec = item.fallback
		}

		parsed, err := parser.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid cron spec %q for %s rules: %w", spec, item.schedule, err)
		}
		s.schedules[item.schedule] = parsed
	}

	return s, nil
}

// Next returns the next execution after from, in UTC. Manual rules have no
// next execution.
func (s *CronScheduler) Next(schedule models.Schedule, from time.Time) *time.Time {
	parsed, ok := s.schedules[schedule]
	if !ok {
		return nil
	}

	next := parsed.Next(from.In(time.UTC))
	if next.IsZero() {
		return nil
	}

	return &next
}

// granularity returns the accounting period length for a schedule.
// Manual rules allocate by month.
func granularity(schedule models.Schedule) types.Granularity {
	switch schedule {
	case models.ScheduleDaily:
		return types.GranularityDay
	case models.ScheduleWeekly:
		return types.GranularityWeek
	}
	return types.GranularityMonth
}
