package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitializeCreatesLogsDir(t *testing.T) {
	ws := t.TempDir()
	defer Close()

	require.NoError(t, Initialize(ws, true))

	info, err := os.Stat(filepath.Join(ws, ".orchestration", "logs"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestCategoryLoggerWritesWhenDebugEnabled(t *testing.T) {
	ws := t.TempDir()
	defer Close()

	require.NoError(t, Initialize(ws, true))

	l := Get(CategoryHooks)
	l.Info("pipeline started for %s", "INT-001")

	data, err := os.ReadFile(filepath.Join(ws, ".orchestration", "logs", "hooks.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "pipeline started for INT-001")
	require.Contains(t, string(data), "[hooks]")
}

func TestCategoryLoggerSilentWhenDebugDisabled(t *testing.T) {
	ws := t.TempDir()
	defer Close()

	require.NoError(t, Initialize(ws, false))

	Get(CategoryTrace).Debug("should not be written")

	_, err := os.Stat(filepath.Join(ws, ".orchestration", "logs", "trace.log"))
	require.True(t, os.IsNotExist(err))
}

func TestSetDebugModeTogglesIsDebugMode(t *testing.T) {
	ws := t.TempDir()
	defer Close()

	require.NoError(t, Initialize(ws, false))
	require.False(t, IsDebugMode())

	SetDebugMode(true)
	require.True(t, IsDebugMode())
}
