package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerEntry is the local, read-only mirror of an entry in the external ledger.
//
// Positive amounts are credits (revenue), negative amounts are debits (costs).
type LedgerEntry struct {
	DefaultModel
	ExternalID  string            `json:"externalId" gorm:"uniqueIndex" example:"JE-2024-000123"`      // ID of the entry in the ledger
	Date        time.Time         `json:"date" gorm:"index" example:"2024-03-05T00:00:00Z"`            // Booking date
	Amount      decimal.Decimal   `json:"amount" gorm:"type:DECIMAL(20,8)" example:"-850"`             // Signed amount
	AccountCode string            `json:"accountCode" gorm:"index" example:"613000 - Loyers"`          // Account of the chart of accounts
	Label       string            `json:"label" example:"Office rent March"`                           // Booking text
	Attributes  map[string]string `json:"attributes" gorm:"serializer:json" example:"cost_center:DEV"` // Free form attributes conditions can match on
}

// AfterFind sets the timezone of the Date to UTC.
func (e *LedgerEntry) AfterFind(tx *gorm.DB) (err error) {
	_ = e.DefaultModel.AfterFind(tx)
	e.Date = e.Date.In(time.UTC)
	return nil
}

func (e *LedgerEntry) BeforeSave(_ *gorm.DB) error {
	e.ExternalID = strings.TrimSpace(e.ExternalID)
	e.AccountCode = strings.TrimSpace(e.AccountCode)
	e.Label = strings.TrimSpace(e.Label)
	e.Date = e.Date.In(time.UTC)

	if e.ExternalID == "" {
		return ErrTagEntryRefEmpty
	}

	return nil
}

func (LedgerEntry) Self() string {
	return "Ledger Entry"
}

// Export returns all ledger entries.
func (LedgerEntry) Export(db *gorm.DB) (json.RawMessage, error) {
	return export[LedgerEntry](db)
}
