package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/envelope-zero/analytics/internal/allocation"
	"github.com/envelope-zero/analytics/internal/axis"
	"github.com/envelope-zero/analytics/internal/budget"
	"github.com/envelope-zero/analytics/internal/config"
	v1 "github.com/envelope-zero/analytics/internal/controllers/v1"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/envelope-zero/analytics/internal/report"
	"gorm.io/gorm"
)

// services wires the engine components to one database connection.
type services struct {
	db       *gorm.DB
	axes     *axis.Registry
	ledger   *allocation.DBLedger
	engine   *allocation.Engine
	tracker  *budget.Tracker
	reporter *report.Reporter
}

func connect(c config.Config) (*services, error) {
	if err := os.MkdirAll(filepath.Dir(c.Database.Path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := models.Connect(c.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	scheduler, err := allocation.NewCronScheduler(c.Schedule)
	if err != nil {
		return nil, err
	}

	s := &services{
		db:       db,
		axes:     axis.NewRegistry(db),
		ledger:   allocation.NewDBLedger(db),
		reporter: report.NewReporter(db),
	}
	s.engine = allocation.NewEngine(db, s.ledger, s.axes, scheduler)
	s.tracker = budget.NewTracker(db, s.axes, c.Forecast).WithLanguage(c.Language())

	return s, nil
}

func (s *services) controller() v1.Controller {
	return v1.Controller{
		DB:       s.db,
		Axes:     s.axes,
		Ledger:   s.ledger,
		Engine:   s.engine,
		Tracker:  s.tracker,
		Reporter: s.reporter,
	}
}

func (s *services) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
