package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/igestorphone/igestorphone-sub000/pkg/logger"
	"github.com/igestorphone/igestorphone-sub000/prometheus"
)

// StatementLogger is a gorm logger that wraps every statement with a
// structured log entry (SQL, duration, rows affected) and a duration metric.
// It replaces ad-hoc instrumentation of the database client.
type StatementLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewStatementLogger creates a statement logger at the given gorm log level
func NewStatementLogger(level gormlogger.LogLevel) *StatementLogger {
	return &StatementLogger{
		level:         level,
		slowThreshold: 200 * time.Millisecond,
	}
}

// LogMode returns a copy of the logger with the new level
func (l *StatementLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info logs informational messages from gorm
func (l *StatementLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		logger.FromContext(ctx).Sugar().Infof(msg, args...)
	}
}

// Warn logs warning messages from gorm
func (l *StatementLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		logger.FromContext(ctx).Sugar().Warnf(msg, args...)
	}
}

// Error logs error messages from gorm
func (l *StatementLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		logger.FromContext(ctx).Sugar().Errorf(msg, args...)
	}
}

// Trace is invoked by gorm after every statement
func (l *StatementLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	prometheus.ObserveDBStatement(statementVerb(sql), elapsed)

	log := logger.FromContext(ctx)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		log.Error("SQL statement failed",
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration("duration", elapsed),
			zap.Error(err))
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		log.Warn("Slow SQL statement",
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration("duration", elapsed),
			zap.Duration("threshold", l.slowThreshold))
	case l.level >= gormlogger.Info:
		log.Debug("SQL statement",
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration("duration", elapsed))
	}
}

// statementVerb extracts the leading SQL verb for metric labels
func statementVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "OTHER"
	}
	switch verb := strings.ToUpper(fields[0]); verb {
	case "SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "ALTER":
		return verb
	default:
		return "OTHER"
	}
}
