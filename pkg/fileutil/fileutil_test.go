package fileutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	carpriceErrors "github.com/ezoic/carprice/pkg/errors"
)

func TestWriteAtomic_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.csv")

	err := WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "a,b\n1,2\n")
		return err
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(got))
}

func TestWriteAtomic_FailureKeepsDestination(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	boom := errors.New("interrupted")
	err := WriteAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be cleaned up")
}

func TestTryLock_Exclusive(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.csv")

	first, err := TryLock(target)
	require.NoError(t, err)

	_, err = TryLock(target)
	assert.True(t, carpriceErrors.Is(err, carpriceErrors.ErrLocked))

	require.NoError(t, first.Unlock())

	again, err := TryLock(target)
	require.NoError(t, err)
	require.NoError(t, again.Unlock())
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, Exists(dir))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}
