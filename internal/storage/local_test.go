package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndRemove(t *testing.T) {
	root := t.TempDir()
	files := NewLocalFiles(root)

	path, err := files.Save("payments", "Receipt.PNG", []byte("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, filepath.Join(root, "payments")))
	assert.Equal(t, ".png", filepath.Ext(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(got))

	require.NoError(t, files.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// second remove is a no-op
	require.NoError(t, files.Remove(path))
	require.NoError(t, files.Remove(""))
}

func TestRemoveOutsideRoot(t *testing.T) {
	files := NewLocalFiles(t.TempDir())
	err := files.Remove("/etc/passwd")
	require.Error(t, err)
}
