// Package allocation implements the allocation rule engine and the tagging
// of ledger entries with axis values.
package allocation

import (
	"time"

	"github.com/envelope-zero/analytics/internal/axis"
	"gorm.io/gorm"
)

// Engine executes allocation rules against the ledger.
//
// The host must not run the same rule concurrently. Duplicate or retried
// executions for the same period are absorbed by fencing tokens.
type Engine struct {
	db        *gorm.DB
	ledger    LedgerSource
	axes      *axis.Registry
	scheduler Scheduler
	now       func() time.Time
}

// NewEngine returns an Engine.
func NewEngine(db *gorm.DB, ledger LedgerSource, axes *axis.Registry, scheduler Scheduler) *Engine {
	return &Engine{
		db:        db,
		ledger:    ledger,
		axes:      axes,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// WithClock sets the clock the engine uses for timestamps and durations.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}
