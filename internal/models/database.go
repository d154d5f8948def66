package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type EZContext string

const (
	DBContextURL EZContext = "ez-analytics-url"
)

// Connect opens the SQLite database, migrates the schema and configures the connection pool.
//
// The returned handle is passed to every service explicitly.
func Connect(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: newLogger(log.Logger),
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
	}

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = migrate(db)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// A single connection serializes writers. This prevents SQLITE_BUSY errors
	// and makes the fencing inserts of concurrent rule executions queue up.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	err = db.Callback().Query().After("*").Register("ez_analytics:after_query", queryCallback)
	if err != nil {
		return nil, err
	}

	err = db.Callback().Query().After("*").Register("ez_analytics:after_query_general", generalCallback)
	if err != nil {
		return nil, err
	}

	err = db.Callback().Create().After("*").Register("ez_analytics:after_create", createUpdateCallback)
	if err != nil {
		return nil, err
	}

	err = db.Callback().Create().After("*").Register("ez_analytics:after_create_general", generalCallback)
	if err != nil {
		return nil, err
	}

	err = db.Callback().Update().After("*").Register("ez_analytics:after_update", createUpdateCallback)
	if err != nil {
		return nil, err
	}

	err = db.Callback().Update().After("*").Register("ez_analytics:after_update_general", generalCallback)
	if err != nil {
		return nil, err
	}

	err = db.Callback().Delete().After("*").Register("ez_analytics:after_delete_general", generalCallback)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		switch {
		case strings.HasSuffix(name, "axes"):
			name = strings.TrimSuffix(name, "es") + "is"
		case strings.HasSuffix(name, "ies"):
			name = regexp.MustCompile("ies$").ReplaceAllString(name, "y")
		default:
			name = strings.TrimSuffix(name, "s")
		}

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// createUpdateCallback inspects errors returned by the database for create
// and update calls and replaces them with user friendly ones
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: axes.code") {
		db.Error = ErrAxisCodeNotUnique
	}

	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: axes.axis_order, axes.active") {
		db.Error = ErrAxisOrderNotUnique
	}

	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: axis_values.axis_id, axis_values.code") {
		db.Error = ErrValueCodeNotUnique
	}

	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: tag_assignments.tagged_entry_id, tag_assignments.axis_id") {
		db.Error = ErrTagAxisDuplicate
	}
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the user with a helpful message.
// Instead, the error is logged and we return a general message to users.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// "sql: database is closed" is hard-coded in the sql module
	if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral

		return
	}
}

// migrate migrates all models to the schema defined in the code.
func migrate(db *gorm.DB) (err error) {
	err = db.AutoMigrate(
		Axis{},
		AxisValue{},
		LedgerEntry{},
		TaggedEntry{},
		TagAssignment{},
		AllocationRule{},
		RuleCondition{},
		AllocationExecution{},
		AllocationFence{},
		BudgetLine{},
		BudgetSnapshot{},
		BudgetAlert{},
	)
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	return nil
}
