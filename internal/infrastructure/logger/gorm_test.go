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

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Info, WithSlowThreshold(50*time.Millisecond))
	ctx := WithRequestID(context.Background(), "req-7")
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), fc, nil)
	l.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	l.Trace(ctx, time.Now(), fc, errors.New("syntax error"))
	l.Trace(ctx, time.Now(), fc, gormlogger.ErrRecordNotFound)

	entries := recorded.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, "SQL Query", entries[0].Message)
		assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, "SQL Error", entries[2].Message)
	}
}

func TestGormLogger_Silent(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Info).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("x"))
	assert.Equal(t, 0, recorded.Len())
}

func TestGormLevelFor(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevelFor("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevelFor("info"))
	assert.Equal(t, gormlogger.Error, GormLevelFor("error"))
}
