package logger

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = time.Second

// GormLogger routes gorm's SQL logging through logrus.
type GormLogger struct {
	entry    *logrus.Entry
	logLevel gormlogger.LogLevel
}

func NewGormLogger(l *Logger) *GormLogger {
	return &GormLogger{
		entry:    l.WithComponent("gorm"),
		logLevel: gormlogger.Warn,
	}
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.logLevel = level
	return &clone
}

func (g *GormLogger) Info(_ context.Context, message string, args ...interface{}) {
	if g.logLevel >= gormlogger.Info {
		g.entry.Infof(message, args...)
	}
}

func (g *GormLogger) Warn(_ context.Context, message string, args ...interface{}) {
	if g.logLevel >= gormlogger.Warn {
		g.entry.Warnf(message, args...)
	}
}

func (g *GormLogger) Error(_ context.Context, message string, args ...interface{}) {
	if g.logLevel >= gormlogger.Error {
		g.entry.Errorf(message, args...)
	}
}

func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && g.logLevel >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.entry.WithError(err).WithFields(logrus.Fields{
			"sql":         sql,
			"rows":        rows,
			"duration_ms": elapsed.Milliseconds(),
		}).Error("query failed")
	case elapsed > slowQueryThreshold && g.logLevel >= gormlogger.Warn:
		sql, rows := fc()
		g.entry.WithFields(logrus.Fields{
			"sql":         sql,
			"rows":        rows,
			"duration_ms": elapsed.Milliseconds(),
		}).Warn("slow query")
	case g.logLevel >= gormlogger.Info:
		sql, rows := fc()
		g.entry.WithFields(logrus.Fields{
			"sql":         sql,
			"rows":        rows,
			"duration_ms": elapsed.Milliseconds(),
		}).Debug("query")
	}
}
