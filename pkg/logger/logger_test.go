package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	l := newLogger()

	formatter, ok := l.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestGetLogger(t *testing.T) {
	t.Run("falls back to global logger", func(t *testing.T) {
		entry := G(context.Background())
		assert.Equal(t, L.Logger, entry.Logger)
	})

	t.Run("returns logger from context", func(t *testing.T) {
		custom := logrus.NewEntry(logrus.New()).WithField("component", "sync")
		ctx := WithLogger(context.Background(), custom)

		entry := G(ctx)
		assert.Equal(t, custom.Logger, entry.Logger)
		assert.Equal(t, "sync", entry.Data["component"])
	})
}

func TestConfigure(t *testing.T) {
	origLevel := L.Logger.GetLevel()
	origFormatter := L.Logger.Formatter
	origOut := L.Logger.Out
	t.Cleanup(func() {
		L.Logger.SetLevel(origLevel)
		L.Logger.Formatter = origFormatter
		L.Logger.SetOutput(origOut)
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		SetOutput(&buf)
		require.NoError(t, Configure("debug", "json"))

		L.WithField("file", "base.md").Debug("copied")

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "copied", decoded["message"])
		assert.Equal(t, "debug", decoded["logLevel"])
		assert.Equal(t, "base.md", decoded["file"])
		assert.Contains(t, decoded, "timestamp")
	})

	t.Run("empty level keeps current level", func(t *testing.T) {
		require.NoError(t, Configure("warn", "text"))
		require.NoError(t, Configure("", "text"))
		assert.Equal(t, logrus.WarnLevel, L.Logger.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, L.Logger.Formatter)
	})

	t.Run("invalid level", func(t *testing.T) {
		err := Configure("loud", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
