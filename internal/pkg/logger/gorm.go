package logger

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

const (
	gormSlowThreshold = 200 * time.Millisecond
	// 作业 content 列可达数百 KB
	gormSQLLimit = 2048
)

type SlogGormLogger struct {
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

func NewGormLogger() *SlogGormLogger {
	return &SlogGormLogger{LogLevel: logger.Warn, SlowThreshold: gormSlowThreshold}
}

func (l *SlogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	next := *l
	next.LogLevel = level
	return &next
}

func (l *SlogGormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Info {
		log.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *SlogGormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Warn {
		log.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *SlogGormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Error {
		log.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func clipSQL(sql string) string {
	if len(sql) > gormSQLLimit {
		return sql[:gormSQLLimit] + "...[truncated]"
	}
	return sql
}

func (l *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, logger.ErrRecordNotFound)
	slow := l.SlowThreshold > 0 && elapsed > l.SlowThreshold
	if !failed && !slow && l.LogLevel < logger.Info {
		return
	}

	sql, rows := fc()
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	msg := "SQL " + strings.ToUpper(verb)
	fields := []any{
		log.String("sql", clipSQL(sql)),
		log.Duration("latency", elapsed),
		log.Int64("rows", rows),
	}

	switch {
	case failed:
		log.ErrorContext(ctx, msg+" Error", append(fields, log.Any("err", err))...)
	case slow:
		log.WarnContext(ctx, msg+" Slow", fields...)
	default:
		log.InfoContext(ctx, msg, fields...)
	}
}
