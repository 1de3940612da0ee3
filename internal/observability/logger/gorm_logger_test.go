package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(cfg GormLoggerConfig) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), cfg), logs
}

func query(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestDescribeSQL(t *testing.T) {
	cases := []struct {
		sql   string
		op    string
		table string
	}{
		{"SELECT * FROM `customers` WHERE consumer_number = ?", "SELECT", "customers"},
		{`INSERT INTO "activity_logs" ("id") VALUES (?)`, "INSERT", "activity_logs"},
		{"UPDATE `wiring_details` SET `status`=?", "UPDATE", "wiring_details"},
		{"DELETE FROM activity_logs WHERE id < ?", "DELETE", "activity_logs"},
		{"PRAGMA foreign_keys = ON", "UNKNOWN", ""},
	}
	for _, tc := range cases {
		op, table := describeSQL(tc.sql)
		assert.Equal(t, tc.op, op, tc.sql)
		assert.Equal(t, tc.table, table, tc.sql)
	}
}

func TestTraceSkipsRecordNotFound(t *testing.T) {
	l, logs := newObservedGormLogger(DefaultGormLoggerConfig(false))

	l.Trace(context.Background(), time.Now(), query("SELECT * FROM customers"), gormlogger.ErrRecordNotFound)

	assert.Zero(t, logs.Len())
}

func TestTraceLogsFailuresWithTable(t *testing.T) {
	l, logs := newObservedGormLogger(DefaultGormLoggerConfig(false))

	l.Trace(context.Background(), time.Now(), query("INSERT INTO customers (id) VALUES (?)"), errors.New("UNIQUE constraint failed: customers.consumer_number"))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "db.query", entries[0].Message)
		assert.Equal(t, "customers", entries[0].ContextMap()["table"])
	}
}

func TestTraceDowngradesLockContention(t *testing.T) {
	l, logs := newObservedGormLogger(DefaultGormLoggerConfig(false))

	l.Trace(context.Background(), time.Now(), query("UPDATE tasks SET status = ?"), errors.New("database is locked (5) (SQLITE_BUSY)"))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	}
}

func TestTraceSlowQuery(t *testing.T) {
	l, logs := newObservedGormLogger(GormLoggerConfig{Level: gormlogger.Warn, SlowThreshold: time.Millisecond})

	l.Trace(context.Background(), time.Now().Add(-time.Second), query("SELECT * FROM tasks"), nil)
	l.Trace(context.Background(), time.Now(), query("SELECT * FROM tasks"), nil)

	assert.Equal(t, 1, logs.FilterMessage("db.query").Len())
}

func TestParamsFilterDropsValues(t *testing.T) {
	l := NewGormLogger(zap.NewNop(), DefaultGormLoggerConfig(true))

	sql, params := l.ParamsFilter(context.Background(), "SELECT ?", "9876543210")

	assert.Equal(t, "SELECT ?", sql)
	assert.Nil(t, params)
}
