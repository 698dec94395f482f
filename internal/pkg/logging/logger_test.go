//go:build unit

package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactFormatter_Format(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "Route added",
		Data: logrus.Fields{
			"component": "reconcile",
			"interface": "wg0",
			"gateway":   "10.0.0.4",
			"subnet":    "192.168.1.0/24",
			"metric":    5,
		},
	}

	t.Run("WithoutTime", func(t *testing.T) {
		out, err := (&CompactFormatter{}).Format(entry)
		require.NoError(t, err)
		assert.Equal(t, "[INFO][reconcile][wg0][10.0.0.4] Route added (metric=5, subnet=192.168.1.0/24)\n", string(out))
	})

	t.Run("WithTime", func(t *testing.T) {
		out, err := (&CompactFormatter{ShowTime: true}).Format(entry)
		require.NoError(t, err)
		assert.Equal(t, "[13:04:05][INFO][reconcile][wg0][10.0.0.4] Route added (metric=5, subnet=192.168.1.0/24)\n", string(out))
	})

	t.Run("NoFields", func(t *testing.T) {
		out, err := (&CompactFormatter{}).Format(&logrus.Entry{Level: logrus.WarnLevel, Message: "plain", Data: logrus.Fields{}})
		require.NoError(t, err)
		assert.Equal(t, "[WARNING] plain\n", string(out))
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("JSONFormat", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: "debug", Format: "json"}, &buf)
		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

		buf.Reset()
		logger.WithField("gateway", "10.0.0.4").Info("hello")

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "hello", decoded["msg"])
		assert.Equal(t, "10.0.0.4", decoded["gateway"])
	})

	t.Run("InvalidLevelDefaultsToInfo", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: "loud", Format: "simple"}, &buf)
		assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
		assert.Contains(t, buf.String(), "Invalid log level 'loud'")
	})

	t.Run("InvalidFormatDefaultsToText", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: "info", Format: "xml"}, &buf)
		assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
		assert.Contains(t, buf.String(), "Invalid log format 'xml'")
	})

	t.Run("SimpleFormat", func(t *testing.T) {
		logger := NewLogger(LogConfig{Level: "info", Format: "simple"}, &bytes.Buffer{})
		assert.IsType(t, &CompactFormatter{}, logger.Formatter)
	})
}

func TestGetLogger_DefaultsWhenUninitialized(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	Logger = nil
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.Same(t, logger, GetLogger())
}
