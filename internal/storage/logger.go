package storage

import (
	"context"
	"errors"
	"time"

	"tabpulse/internal/ctxkeys"
	applog "tabpulse/internal/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// defaultSlowSQL 设置表极小，超过该耗时基本意味着数据库文件被锁
const defaultSlowSQL = 200 * time.Millisecond

// GormLogger 把 GORM 的日志接到应用日志器上，每条日志带上所属决策周期
type GormLogger struct {
	log           applog.Logger
	LogLevel      gormlogger.LogLevel
	SlowThreshold time.Duration
}

// NewGormLogger 默认只输出警告和错误
func NewGormLogger(l applog.Logger) *GormLogger {
	if l == nil {
		l = applog.NewNop()
	}
	return &GormLogger{log: l, LogLevel: gormlogger.Warn, SlowThreshold: defaultSlowSQL}
}

// LogMode 返回调整了级别的副本，gorm.Session(Debug) 依赖这一行为
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *g
	c.LogLevel = level
	return &c
}

func (g *GormLogger) forCycle(ctx context.Context) applog.Logger {
	if id := ctxkeys.CycleID(ctx); id != "" {
		return g.log.With("cycle", id)
	}
	return g.log
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if g.LogLevel >= gormlogger.Info {
		g.forCycle(ctx).Info(msg, "args", data)
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if g.LogLevel >= gormlogger.Warn {
		g.forCycle(ctx).Warn(msg, "args", data)
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if g.LogLevel >= gormlogger.Error {
		g.forCycle(ctx).Error(msg, "args", data)
	}
}

// Trace 每条语句执行后调用。未命中记录是 Get 的正常结果，不算错误
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.LogLevel <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := g.SlowThreshold > 0 && elapsed > g.SlowThreshold

	var level gormlogger.LogLevel
	switch {
	case failed:
		level = gormlogger.Error
	case slow:
		level = gormlogger.Warn
	default:
		level = gormlogger.Info
	}
	if g.LogLevel < level {
		return
	}

	sql, rows := fc()
	l := g.forCycle(ctx).With("sql", sql, "rows", rows, "elapsed", elapsed.String())
	switch level {
	case gormlogger.Error:
		l.Error("SQL执行失败", "error", err)
	case gormlogger.Warn:
		l.Warn("SQL执行缓慢", "threshold", g.SlowThreshold.String())
	default:
		l.Debug("SQL执行")
	}
}
