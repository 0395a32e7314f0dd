package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restau/internal/config"
	"restau/internal/logging"
)

func TestNew_LevelAndFormat(t *testing.T) {
	logger := logging.New(config.LogConfig{Level: "warn", Format: "json"})
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)

	logger = logging.New(config.LogConfig{Level: "bogus", Format: "text"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestLogError_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(config.LogConfig{Level: "info", Format: "json"})
	logger.SetOutput(&buf)

	logging.LogError(logger, "audit", "Record", errors.New("boom"), logrus.Fields{"action": "auth.login.success"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["msg"])
	assert.Equal(t, "audit", entry["module"])
	assert.Equal(t, "Record", entry["funcName"])
	assert.Equal(t, "auth.login.success", entry["action"])
}
