package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigLimits(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 10, cfg.Limits.MaxOwnedScope)
	require.Equal(t, 20, cfg.Limits.MaxConstraints)
	require.Equal(t, 15, cfg.Limits.MaxAcceptanceCriteria)
}

func TestLoadReturnsDefaultsWhenMissing(t *testing.T) {
	ws := t.TempDir()
	cfg, err := Load(ws)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	ws := t.TempDir()
	cfg := DefaultConfig()
	cfg.Logging.DebugMode = true
	cfg.Limits.MaxOwnedScope = 3

	require.NoError(t, Save(ws, cfg))

	loaded, err := Load(ws)
	require.NoError(t, err)
	require.True(t, loaded.Logging.DebugMode)
	require.Equal(t, 3, loaded.Limits.MaxOwnedScope)
}
