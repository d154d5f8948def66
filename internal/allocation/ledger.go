package allocation

import (
	"context"
	"strings"
	"time"

	"github.com/envelope-zero/analytics/internal/models"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerSource is the read-only view of the ledger the engine allocates from.
type LedgerSource interface {
	// Entries returns all entries whose account matches the pattern and whose
	// date is in [from, to), ordered by date and external ID.
	Entries(ctx context.Context, pattern string, from, to time.Time) ([]models.LedgerEntry, error)

	// Entry returns the entry with the given external ID.
	Entry(ctx context.Context, externalID string) (models.LedgerEntry, error)
}

// MatchAccount reports if the account matches the pattern.
//
// Patterns without a '*' must match exactly. Glob patterns match the full
// account, so "62*" matches "6200 - Salaries".
func MatchAccount(pattern, account string) bool {
	pattern = strings.TrimSpace(pattern)
	if !strings.Contains(pattern, "*") {
		return pattern == account
	}

	return glob.Glob(pattern, account)
}

// DBLedger is a LedgerSource backed by the mirrored ledger entries in the database.
type DBLedger struct {
	db *gorm.DB
}

// NewDBLedger returns a LedgerSource that reads ledger entries from db.
func NewDBLedger(db *gorm.DB) *DBLedger {
	return &DBLedger{db: db}
}

// Entries returns the entries whose account matches pattern in [from, to).
// A zero bound is open.
func (l *DBLedger) Entries(ctx context.Context, pattern string, from, to time.Time) ([]models.LedgerEntry, error) {
	query := l.db.WithContext(ctx)
	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("date < ?", to)
	}

	// Narrow down by prefix in the database, the glob is applied afterwards
	if prefix, _, found := strings.Cut(pattern, "*"); found && prefix != "" {
		query = query.Where("account_code LIKE ?", prefix+"%")
	} else if !found {
		query = query.Where("account_code = ?", pattern)
	}

	var candidates []models.LedgerEntry
	err := query.Order("date ASC, external_id ASC").Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	entries := make([]models.LedgerEntry, 0, len(candidates))
	for _, e := range candidates {
		if MatchAccount(pattern, e.AccountCode) {
			entries = append(entries, e)
		}
	}

	return entries, nil
}

func (l *DBLedger) Entry(ctx context.Context, externalID string) (models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := l.db.WithContext(ctx).First(&entry, "external_id = ?", externalID).Error
	if err != nil {
		return models.LedgerEntry{}, err
	}

	return entry, nil
}

// Import mirrors entries of the external ledger. Entries that already exist
// are updated in place, identified by their external ID.
func (l *DBLedger) Import(ctx context.Context, entries []models.LedgerEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	result := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"date", "amount", "account_code", "label", "attributes", "updated_at"}),
	}).Create(&entries)

	return result.RowsAffected, result.Error
}
