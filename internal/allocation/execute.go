package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/envelope-zero/analytics/internal/axis"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/envelope-zero/analytics/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// plan is a rule whose validity has been checked, ready to be applied to entries.
type plan struct {
	rule     models.AllocationRule
	strategy strategy
	axes     map[string]models.Axis                 // By axis code
	values   map[string]map[string]models.AxisValue // By axis code, then value code
}

// prepare checks that a rule can be executed. All errors it returns wrap
// models.ErrPrecondition.
func (e *Engine) prepare(ctx context.Context, rule models.AllocationRule) (plan, error) {
	if !rule.Active {
		return plan{}, models.ErrRuleInactive
	}

	s, err := strategyFor(rule)
	if err != nil {
		return plan{}, fmt.Errorf("%w: %w", models.ErrPrecondition, err)
	}

	p := plan{
		rule:     rule,
		strategy: s,
		axes:     make(map[string]models.Axis, len(rule.TargetAxes)),
		values:   make(map[string]map[string]models.AxisValue, len(rule.TargetAxes)),
	}

	for _, code := range rule.TargetAxes {
		a, err := e.axes.AxisByCode(ctx, code)
		if errors.Is(err, models.ErrResourceNotFound) {
			return plan{}, fmt.Errorf("%w: %s does not exist", models.ErrRuleTargetInactive, code)
		} else if err != nil {
			return plan{}, err
		}

		if !a.Active {
			return plan{}, fmt.Errorf("%w: %s", models.ErrRuleTargetInactive, code)
		}

		p.axes[code] = a
		p.values[code] = make(map[string]models.AxisValue)
	}

	for _, c := range rule.Conditions {
		for axisCode, valueCode := range c.Mappings {
			if _, ok := p.axes[axisCode]; !ok {
				return plan{}, fmt.Errorf("%w: %s is not a target axis", models.ErrRuleMappingInvalid, axisCode)
			}

			if _, ok := p.values[axisCode][valueCode]; ok {
				continue
			}

			value, err := e.axes.ValueByCode(ctx, axisCode, valueCode)
			if errors.Is(err, models.ErrResourceNotFound) {
				return plan{}, fmt.Errorf("%w: %s/%s", models.ErrRuleMappingInvalid, axisCode, valueCode)
			} else if err != nil {
				return plan{}, err
			}

			if !value.Active {
				return plan{}, fmt.Errorf("%w: %s/%s is inactive", models.ErrRuleMappingInvalid, axisCode, valueCode)
			}

			p.values[axisCode][valueCode] = value
		}
	}

	return p, nil
}

// ExecuteRule applies a rule to the unfenced ledger entries of the period
// containing asOf.
//
// If the rule cannot be executed, an execution with status error is recorded
// and the returned error wraps models.ErrPrecondition. No entry is touched in
// that case. Failures of single entries leave them unallocated and result
// in a partial execution.
func (e *Engine) ExecuteRule(ctx context.Context, ruleID uuid.UUID, asOf time.Time) (models.AllocationExecution, error) {
	start := e.now()
	asOf = asOf.In(time.UTC)

	rule, err := e.Rule(ctx, ruleID)
	if err != nil {
		return models.AllocationExecution{}, err
	}

	period := types.PeriodOf(asOf, granularity(rule.Schedule))
	execution := models.AllocationExecution{
		DefaultModel: models.DefaultModel{ID: uuid.New()},
		RuleID:       rule.ID,
		Timestamp:    asOf,
		Period:       period.Key,
		TotalAmount:  decimal.Zero,
	}

	p, err := e.prepare(ctx, rule)
	if err != nil {
		execution.Status = models.ExecutionError
		execution.ErrorMessage = err.Error()
		execution.DurationMs = e.now().Sub(start).Milliseconds()

		recordErr := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return e.record(tx, &rule, &execution)
		})
		if recordErr != nil {
			return models.AllocationExecution{}, recordErr
		}

		log.Warn().Str("rule", rule.ID.String()).Err(err).Msg("allocation rule refused to execute")
		observe(execution, start, e.now())
		return execution, err
	}

	// Entries up to and including asOf
	to := period.End
	if asOf.Before(to) {
		to = asOf.Add(time.Nanosecond)
	}

	entries, err := e.ledger.Entries(ctx, rule.SourceAccount, period.Start, to)
	if err != nil {
		return models.AllocationExecution{}, err
	}

	fenced, err := e.fenced(ctx, rule.ID, period.Key)
	if err != nil {
		return models.AllocationExecution{}, err
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if fenced[entry.ExternalID] {
				continue
			}

			claimed, err := claim(tx, rule.ID, entry.ExternalID, period.Key, execution.ID)
			if err != nil {
				return err
			}

			// Another execution for the period got there first
			if !claimed {
				continue
			}

			execution.EntriesProcessed++
			execution.TotalAmount = execution.TotalAmount.Add(entry.Amount)

			allocated, err := e.apply(tx, p, execution.ID, entry)
			if err != nil {
				return err
			}

			if allocated == nil {
				execution.UnallocatedAmount = execution.UnallocatedAmount.Add(entry.Amount)
				continue
			}

			execution.EntriesAllocated++
			execution.UnallocatedAmount = execution.UnallocatedAmount.Add(entry.Amount.Sub(*allocated))
		}

		execution.Status = models.ExecutionSuccess
		if execution.EntriesAllocated != execution.EntriesProcessed {
			execution.Status = models.ExecutionPartial
		}
		execution.DurationMs = e.now().Sub(start).Milliseconds()

		return e.record(tx, &rule, &execution)
	})
	if err != nil {
		return models.AllocationExecution{}, err
	}

	log.Info().
		Str("rule", rule.ID.String()).
		Str("period", period.Key).
		Str("status", string(execution.Status)).
		Int("processed", execution.EntriesProcessed).
		Int("allocated", execution.EntriesAllocated).
		Msg("executed allocation rule")

	observe(execution, start, e.now())
	return execution, nil
}

// fenced returns the external IDs of the entries already allocated by the
// rule in the period.
func (e *Engine) fenced(ctx context.Context, ruleID uuid.UUID, period string) (map[string]bool, error) {
	var refs []string
	err := e.db.WithContext(ctx).Model(&models.AllocationFence{}).
		Where("rule_id = ? AND period = ?", ruleID, period).
		Pluck("entry_ref", &refs).Error
	if err != nil {
		return nil, err
	}

	fenced := make(map[string]bool, len(refs))
	for _, ref := range refs {
		fenced[ref] = true
	}

	return fenced, nil
}

// claim takes the fencing token for an entry. It reports false if the token
// already exists.
func claim(tx *gorm.DB, ruleID uuid.UUID, entryRef, period string, executionID uuid.UUID) (bool, error) {
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.AllocationFence{
		RuleID:      ruleID,
		EntryRef:    entryRef,
		Period:      period,
		ExecutionID: executionID,
	})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// apply allocates a single entry and stores its fragments. It returns the
// allocated amount, or nil if the entry stays unallocated.
//
// Only storage errors are returned as errors.
func (e *Engine) apply(tx *gorm.DB, p plan, executionID uuid.UUID, entry models.LedgerEntry) (*decimal.Decimal, error) {
	fragments, err := p.strategy.allocate(entry, matchingConditions(p.rule.Conditions, entry), p.rule.TargetAxes)
	if err != nil {
		log.Debug().Str("rule", p.rule.ID.String()).Str("entry", entry.ExternalID).Err(err).Msg("entry left unallocated")
		return nil, nil
	}

	ruleID := p.rule.ID
	allocated := decimal.Zero

	for _, f := range fragments {
		tagged := models.TaggedEntry{
			EntryRef:    entry.ExternalID,
			Date:        entry.Date,
			Amount:      f.amount,
			AccountCode: entry.AccountCode,
			Provenance:  models.ProvenanceRule,
			RuleID:      &ruleID,
			ExecutionID: &executionID,
		}

		valueIDs := make([]uuid.UUID, 0, len(p.rule.TargetAxes))
		for _, code := range p.rule.TargetAxes {
			value := p.values[code][f.mappings[code]]
			tagged.Assignments = append(tagged.Assignments, models.TagAssignment{
				AxisID:    p.axes[code].ID,
				AxisCode:  code,
				ValueID:   value.ID,
				ValueCode: value.Code,
			})
			valueIDs = append(valueIDs, value.ID)
		}

		if err := tx.Create(&tagged).Error; err != nil {
			return nil, err
		}

		if err := axis.IncrementUsage(tx, valueIDs...); err != nil {
			return nil, err
		}

		allocated = allocated.Add(f.amount)
	}

	return &allocated, nil
}

// record stores the execution and updates the statistics of the rule.
func (e *Engine) record(tx *gorm.DB, rule *models.AllocationRule, execution *models.AllocationExecution) error {
	if err := tx.Create(execution).Error; err != nil {
		return err
	}

	score := decimal.Zero
	if execution.Status == models.ExecutionSuccess {
		score = decimal.NewFromInt(100)
	}

	count := decimal.NewFromInt(int64(rule.ExecutionCount))
	rule.SuccessRate = rule.SuccessRate.Mul(count).Add(score).Div(count.Add(decimal.NewFromInt(1)))
	rule.ExecutionCount++

	lastExecution := execution.Timestamp
	rule.LastExecution = &lastExecution
	rule.NextExecution = nil
	if rule.Active {
		rule.NextExecution = e.scheduler.Next(rule.Schedule, execution.Timestamp)
	}

	return tx.Model(rule).Select("ExecutionCount", "SuccessRate", "LastExecution", "NextExecution").Updates(rule).Error
}

func observe(execution models.AllocationExecution, start, end time.Time) {
	executionCount.WithLabelValues(string(execution.Status)).Inc()
	executionDuration.Observe(end.Sub(start).Seconds())
}
