// pkg/storage/atomicfile_test.go
package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, AtomicWrite(path, []byte("hello"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	// No stray temp file left behind.
	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestWriteOutputRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, WriteOutput(path, []byte("first"), false))

	err := WriteOutput(path, []byte("second"), false)
	require.Error(t, err)
	got, _ := os.ReadFile(path)
	require.Equal(t, []byte("first"), got)

	require.NoError(t, WriteOutput(path, []byte("second"), true))
	got, _ = os.ReadFile(path)
	require.Equal(t, []byte("second"), got)
}
