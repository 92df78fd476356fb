package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"serial-discovery/internal/config"
)

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "discovery.log")
	logger, err := NewLogger(&config.LoggingConfig{
		Level:  "debug",
		Format: "json",
		Output: path,
	})
	require.NoError(t, err)

	logger.Info("hello", zap.String("port", "/dev/ttyUSB0"))
	require.NoError(t, CloseLogger(logger))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"port":"/dev/ttyUSB0"`)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&config.LoggingConfig{Level: "loud", Output: "stdout"})
	require.Error(t, err)
}

func TestScanLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sl := NewScanLogger(zap.New(core), "serial", "run-1")

	sl.Start()
	sl.Success(2)
	sl.Error(errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "Discovery started", entries[0].Message)
	assert.Equal(t, "Discovery completed", entries[1].Message)
	assert.Equal(t, int64(2), entries[1].ContextMap()["devices_found"])
	assert.Equal(t, "run-1", entries[2].ContextMap()["run_id"])
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}

func TestServiceLogger_LevelFromStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sl := NewServiceLogger(zap.New(core), "http-server")

	sl.LogAPIRequest("GET", "/ports", "test", "127.0.0.1", "req-1", 200, 0)
	sl.LogAPIRequest("GET", "/nope", "test", "127.0.0.1", "req-2", 404, 0)
	sl.LogAPIRequest("GET", "/scan", "test", "127.0.0.1", "req-3", 500, 0)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
}
