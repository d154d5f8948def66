package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Provenance describes how a tagged entry was created.
type Provenance string

const (
	ProvenanceManual Provenance = "manual"
	ProvenanceRule   Provenance = "rule"
)

// TaggedEntry is a ledger amount annotated with axis value assignments.
//
// Rule derived entries are fragments: a single ledger entry can produce
// several tagged entries when a rule splits its amount.
type TaggedEntry struct {
	DefaultModel
	EntryRef    string          `json:"entryRef" gorm:"index" example:"JE-2024-000123"` // External ledger entry ID
	Date        time.Time       `json:"date" gorm:"index" example:"2024-03-05T00:00:00Z"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"-850"`
	AccountCode string          `json:"accountCode" example:"613000 - Loyers"`
	Provenance  Provenance      `json:"provenance" example:"rule"`
	RuleID      *uuid.UUID      `json:"ruleId"`      // Rule that created the entry, if any
	ExecutionID *uuid.UUID      `json:"executionId"` // Execution that created the entry, if any
	Assignments []TagAssignment `json:"assignments" gorm:"constraint:OnDelete:CASCADE"`
}

// TagAssignment assigns one axis value to a tagged entry.
type TagAssignment struct {
	ID            uuid.UUID `json:"-" gorm:"type:uuid;primaryKey"`
	TaggedEntryID uuid.UUID `json:"-" gorm:"uniqueIndex:tag_assignment_axis"`
	AxisID        uuid.UUID `json:"axisId" gorm:"uniqueIndex:tag_assignment_axis"`
	AxisCode      string    `json:"axisCode" gorm:"index:tag_assignment_code" example:"PROJECT"`
	ValueID       uuid.UUID `json:"valueId"`
	ValueCode     string    `json:"valueCode" gorm:"index:tag_assignment_code" example:"WEB_RELAUNCH"`
}

func (a *TagAssignment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AfterFind sets the timezone of the Date to UTC.
func (t *TaggedEntry) AfterFind(tx *gorm.DB) (err error) {
	_ = t.DefaultModel.AfterFind(tx)
	t.Date = t.Date.In(time.UTC)
	return nil
}

func (t *TaggedEntry) BeforeSave(_ *gorm.DB) error {
	t.Date = t.Date.In(time.UTC)

	if t.EntryRef == "" {
		return ErrTagEntryRefEmpty
	}

	if len(t.Assignments) > MaxActiveAxes {
		return ErrTagTooManyAxes
	}

	seen := make(map[uuid.UUID]bool, len(t.Assignments))
	for _, a := range t.Assignments {
		if seen[a.AxisID] {
			return ErrTagAxisDuplicate
		}
		seen[a.AxisID] = true
	}

	return nil
}

// Value returns the value code assigned on the axis and if there is one.
func (t TaggedEntry) Value(axisCode string) (string, bool) {
	for _, a := range t.Assignments {
		if a.AxisCode == axisCode {
			return a.ValueCode, true
		}
	}
	return "", false
}

func (TaggedEntry) Self() string {
	return "Tagged Entry"
}

// Export returns all tagged entries with their assignments.
func (TaggedEntry) Export(db *gorm.DB) (json.RawMessage, error) {
	return export[TaggedEntry](db.Preload("Assignments"))
}
