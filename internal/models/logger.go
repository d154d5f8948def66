package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gorm_logger "gorm.io/gorm/logger"
)

// slowQuery is the duration above which queries are logged as warnings.
const slowQuery = 200 * time.Millisecond

// logger writes gorm messages and traces to zerolog.
type logger struct {
	Logger zerolog.Logger
}

func newLogger(l zerolog.Logger) *logger {
	return &logger{Logger: l.With().Str("component", "gorm").Logger()}
}

func (l *logger) LogMode(gorm_logger.LogLevel) gorm_logger.Interface {
	return l
}

func (l *logger) Info(_ context.Context, s string, args ...any) {
	l.Logger.Info().Msg(fmt.Sprintf(s, args...))
}

func (l *logger) Warn(_ context.Context, s string, args ...any) {
	l.Logger.Warn().Msg(fmt.Sprintf(s, args...))
}

func (l *logger) Error(_ context.Context, s string, args ...any) {
	l.Logger.Error().Msg(fmt.Sprintf(s, args...))
}

func (l *logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	var event *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, ErrResourceNotFound) && !errors.Is(err, gorm_logger.ErrRecordNotFound):
		event = l.Logger.Error().Err(err)
	case elapsed > slowQuery:
		event = l.Logger.Warn()
	default:
		event = l.Logger.Debug()
	}

	// Skip rendering the SQL for disabled levels
	if !event.Enabled() {
		return
	}

	sql, rows := fc()
	event.
		Str("sql", sql).
		Int64("rows", rows).
		Dur("duration", elapsed).
		Msg("query")
}
