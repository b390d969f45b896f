package logutils

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestSetLevel(t *testing.T) {
	defer Log.SetLevel(Log.GetLevel())

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	require.NoError(t, SetLevel(""))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	assert.Error(t, SetLevel("loud"))
}

func TestGormLoggerTrace(t *testing.T) {
	var buf bytes.Buffer
	out, level := Log.Out, Log.GetLevel()
	Log.SetOutput(&buf)
	Log.SetLevel(logrus.DebugLevel)
	defer func() {
		Log.SetOutput(out)
		Log.SetLevel(level)
	}()

	l := NewGormLogger()
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Contains(t, buf.String(), "SELECT 1")

	buf.Reset()
	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 2", 1 }, nil)
	assert.Empty(t, buf.String())
}
