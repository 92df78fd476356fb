package database

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestMigrationVersion(t *testing.T) {
	version, err := LatestMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	src, err := migrationSource()
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)

	up, _, err := src.ReadUp(version)
	require.NoError(t, err)
	upSQL, err := io.ReadAll(up)
	up.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(upSQL), "CREATE TABLE IF NOT EXISTS scan_runs"))

	down, _, err := src.ReadDown(version)
	require.NoError(t, err)
	downSQL, err := io.ReadAll(down)
	down.Close()
	require.NoError(t, err)
	assert.Contains(t, string(downSQL), "DROP TABLE IF EXISTS scan_runs")
}

func TestMigrationStatus_Pending(t *testing.T) {
	assert.True(t, MigrationStatus{Version: 0, Latest: 1}.Pending())
	assert.False(t, MigrationStatus{Version: 1, Latest: 1}.Pending())
}
