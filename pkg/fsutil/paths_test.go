package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheDir(t *testing.T) {
	dir, err := CacheDir()
	require.NoError(t, err)
	assert.Equal(t, AppName, filepath.Base(dir))
}

func TestConfigDir(t *testing.T) {
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, AppName, filepath.Base(dir))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent.
	require.NoError(t, EnsureDir(dir))
}
