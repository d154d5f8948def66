package allocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/envelope-zero/analytics/internal/axis"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ManualTag assigns axis values to a ledger entry by hand.
type ManualTag struct {
	EntryRef    string            `json:"entryRef" example:"JE-2024-000123"`
	Assignments map[string]string `json:"assignments"` // Axis code to value code
}

// TagEntry tags a ledger entry with one value per axis.
//
// All axes and values must be active and every required axis must be
// assigned.
func (e *Engine) TagEntry(ctx context.Context, tag ManualTag) (models.TaggedEntry, error) {
	ref := strings.TrimSpace(tag.EntryRef)
	if ref == "" {
		return models.TaggedEntry{}, models.ErrTagEntryRefEmpty
	}

	if len(tag.Assignments) > models.MaxActiveAxes {
		return models.TaggedEntry{}, models.ErrTagTooManyAxes
	}

	entry, err := e.ledger.Entry(ctx, ref)
	if errors.Is(err, models.ErrResourceNotFound) {
		return models.TaggedEntry{}, models.ErrLedgerEntryNotFound
	} else if err != nil {
		return models.TaggedEntry{}, err
	}

	active, err := e.axes.ActiveAxes(ctx)
	if err != nil {
		return models.TaggedEntry{}, err
	}

	assignments := make(map[string]string, len(tag.Assignments))
	for axisCode, valueCode := range tag.Assignments {
		assignments[models.NormalizeAxisCode(axisCode)] = strings.TrimSpace(valueCode)
	}

	for _, a := range active {
		if _, ok := assignments[a.Code]; a.Required && !ok {
			return models.TaggedEntry{}, fmt.Errorf("%w: %s", models.ErrTagRequiredAxis, a.Code)
		}
	}

	tagged := models.TaggedEntry{
		EntryRef:    entry.ExternalID,
		Date:        entry.Date,
		Amount:      entry.Amount,
		AccountCode: entry.AccountCode,
		Provenance:  models.ProvenanceManual,
	}

	valueIDs := make([]uuid.UUID, 0, len(assignments))
	for axisCode, valueCode := range assignments {
		a, err := e.axes.AxisByCode(ctx, axisCode)
		if err != nil {
			return models.TaggedEntry{}, err
		}

		if !a.Active {
			return models.TaggedEntry{}, fmt.Errorf("%w: %s", models.ErrAxisInactive, a.Code)
		}

		value, err := e.axes.ValueByCode(ctx, axisCode, valueCode)
		if err != nil {
			return models.TaggedEntry{}, err
		}

		if !value.Active {
			return models.TaggedEntry{}, fmt.Errorf("%w: %s/%s", models.ErrValueInactive, a.Code, value.Code)
		}

		tagged.Assignments = append(tagged.Assignments, models.TagAssignment{
			AxisID:    a.ID,
			AxisCode:  a.Code,
			ValueID:   value.ID,
			ValueCode: value.Code,
		})
		valueIDs = append(valueIDs, value.ID)
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tagged).Error; err != nil {
			return err
		}

		return axis.IncrementUsage(tx, valueIDs...)
	})
	if err != nil {
		return models.TaggedEntry{}, err
	}

	return tagged, nil
}

// TaggedFilter filters the tagged entries returned by TaggedEntries.
type TaggedFilter struct {
	EntryRef   string
	AxisCode   string
	ValueCode  string // Only used together with AxisCode
	Provenance models.Provenance
	RuleID     *uuid.UUID
	From       time.Time // Inclusive, ignored if zero
	To         time.Time // Exclusive, ignored if zero
}

// TaggedEntries returns the tagged entries matching the filter with their
// assignments, ordered by date.
func (e *Engine) TaggedEntries(ctx context.Context, filter TaggedFilter) ([]models.TaggedEntry, error) {
	return FindTagged(e.db.WithContext(ctx), filter)
}

// FindTagged queries tagged entries. It is shared with the budget tracker.
func FindTagged(db *gorm.DB, filter TaggedFilter) ([]models.TaggedEntry, error) {
	query := db.Preload("Assignments")

	if filter.EntryRef != "" {
		query = query.Where("tagged_entries.entry_ref = ?", filter.EntryRef)
	}

	if filter.Provenance != "" {
		query = query.Where("tagged_entries.provenance = ?", filter.Provenance)
	}

	if filter.RuleID != nil {
		query = query.Where("tagged_entries.rule_id = ?", *filter.RuleID)
	}

	if !filter.From.IsZero() {
		query = query.Where("tagged_entries.date >= ?", filter.From)
	}

	if !filter.To.IsZero() {
		query = query.Where("tagged_entries.date < ?", filter.To)
	}

	if filter.AxisCode != "" {
		sub := db.Session(&gorm.Session{NewDB: true}).Model(&models.TagAssignment{}).
			Select("tagged_entry_id").
			Where("axis_code = ?", models.NormalizeAxisCode(filter.AxisCode))

		if filter.ValueCode != "" {
			sub = sub.Where("value_code = ?", filter.ValueCode)
		}

		query = query.Where("tagged_entries.id IN (?)", sub)
	}

	entries := []models.TaggedEntry{}
	err := query.Order("tagged_entries.date ASC, tagged_entries.entry_ref ASC").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}
