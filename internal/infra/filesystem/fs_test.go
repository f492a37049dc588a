package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_WriteThenRead(t *testing.T) {
	root := t.TempDir()
	fs := New(root)

	require.NoError(t, fs.WriteFile("pkg/app.py", []byte("print('hi')\n")))

	got, err := fs.ReadFile("pkg/app.py")
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(got))

	entries, err := os.ReadDir(filepath.Join(root, "pkg"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestFS_WriteFile_KeepsMode(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "run.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

	require.NoError(t, New(root).WriteFile("run.sh", []byte("#!/bin/sh\necho ok\n")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestFS_RejectsEscape(t *testing.T) {
	fs := New(t.TempDir())

	_, err := fs.ReadFile("../secret")
	assert.Error(t, err)
	assert.Error(t, fs.WriteFile("a/../../secret", []byte("x")))
}

func TestFS_ReadFile_Missing(t *testing.T) {
	_, err := New(t.TempDir()).ReadFile("missing.go")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
