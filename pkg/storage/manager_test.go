package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "flickrcrawler/pkg/errors"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "cat_0.jpg", FileName("cat", 0))
	assert.Equal(t, "red fox_42.jpg", FileName("red fox", 42))
	assert.Equal(t, "a_b_c_3.jpg", FileName(`a/b\c`, 3))
}

func TestManagerSavePhoto(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	manager, err := NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, manager.OutputDir())

	path, n, err := manager.SavePhoto(bytes.NewReader([]byte("jpeg data")), "cat", 7)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cat_7.jpg"), path)
	assert.EqualValues(t, 9, n)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg data", string(content))

	// Same job again overwrites.
	_, _, err = manager.SavePhoto(bytes.NewReader([]byte("v2")), "cat", 7)
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))

	assert.EqualValues(t, 2, manager.SavedCount())
	assert.EqualValues(t, 11, manager.SavedBytes())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stream broke") }

func TestManagerSavePhotoFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	_, _, err = manager.SavePhoto(io.MultiReader(bytes.NewReader([]byte("half")), failingReader{}), "dog", 1)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeFilesystem))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, manager.SavedCount())
}

func TestNewManagerFailsOnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := NewManager(filepath.Join(file, "sub"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeFilesystem))
}

func TestWriteAtomicMissingDirectory(t *testing.T) {
	err := WriteAtomic(filepath.Join(t.TempDir(), "missing", "m.json"), func(w io.Writer) error {
		_, err := w.Write([]byte("{}"))
		return err
	})
	assert.True(t, errs.Is(err, errs.ErrorTypeFilesystem))
}
