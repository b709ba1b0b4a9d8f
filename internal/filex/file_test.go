package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesNested(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "a", "b", "client.db")

	require.NoError(t, EnsureParentDir(target))

	info, err := os.Stat(filepath.Join(base, "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err), "only the directory is created")
}

func TestEnsureParentDir_Idempotent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "x", "client.db")
	require.NoError(t, EnsureParentDir(target))
	require.NoError(t, EnsureParentDir(target))
}

func TestEnsureParentDir_BareFileName(t *testing.T) {
	require.NoError(t, EnsureParentDir("client.db"))
}

func TestEnsureParentDir_ParentIsFile(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	err := EnsureParentDir(filepath.Join(file, "client.db"))
	require.Error(t, err)
}
