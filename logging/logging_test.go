package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_TextFormatterInDevelopment(t *testing.T) {
	logger := log.New()
	var out bytes.Buffer

	closer, err := configure(logger, DefaultConfig("debug", "", "development"), &out)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, log.DebugLevel, logger.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, logger.Formatter)

	logger.WithField("user_id", 42).Info("hello")
	assert.Contains(t, out.String(), "user_id=42")
}

func TestConfigure_JSONFormatterInProduction(t *testing.T) {
	logger := log.New()
	var out bytes.Buffer

	closer, err := configure(logger, DefaultConfig("warn", "", "production"), &out)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("dropped")
	logger.WithField("guild_id", 7).Warn("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, float64(7), entry["guild_id"])
}

func TestConfigure_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger := log.New()
	_, err := configure(logger, DefaultConfig("loud", "", ""), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}

func TestConfigure_WritesRotatingFile(t *testing.T) {
	logger := log.New()
	path := filepath.Join(t.TempDir(), "logs", "elaina.log")
	var out bytes.Buffer

	closer, err := configure(logger, DefaultConfig("info", path, "development"), &out)
	require.NoError(t, err)

	logger.Info("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, out.String(), "to both")
}
