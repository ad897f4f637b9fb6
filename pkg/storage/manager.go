package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	errs "flickrcrawler/pkg/errors"
)

// Manager writes downloaded photos into a single output directory.
type Manager struct {
	outputDir  string
	savedFiles atomic.Int64
	savedBytes atomic.Int64
}

// NewManager creates the output directory if needed. Failure is a
// FilesystemFailure and should abort the run.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeFilesystem, err, fmt.Sprintf("failed to create output directory %s", outputDir))
	}
	return &Manager{outputDir: outputDir}, nil
}

var unsafeChars = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// FileName returns the file name for a job: {keyword}_{index}.jpg. Path
// separators in the keyword are replaced so the file stays in the output
// directory.
func FileName(keyword string, index int64) string {
	return fmt.Sprintf("%s_%d.jpg", unsafeChars.Replace(keyword), index)
}

// PathFor returns the destination path for a job.
func (m *Manager) PathFor(keyword string, index int64) string {
	return filepath.Join(m.outputDir, FileName(keyword, index))
}

// SavePhoto writes r to the destination for keyword and index, replacing any
// existing file. It returns the final path and the number of bytes written.
func (m *Manager) SavePhoto(r io.Reader, keyword string, index int64) (string, int64, error) {
	path := m.PathFor(keyword, index)

	var written int64
	err := WriteAtomic(path, func(w io.Writer) error {
		n, err := io.Copy(w, r)
		written = n
		return err
	})
	if err != nil {
		return "", 0, err
	}

	m.savedFiles.Add(1)
	m.savedBytes.Add(written)
	return path, written, nil
}

// WriteAtomic writes path through a temporary file in the same directory,
// syncs it and renames it into place, so readers never see a partial file.
func WriteAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to create temporary file")
	}
	tmpName := tmp.Name()

	cleanup := func(err error, msg string) error {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Wrap(errs.ErrorTypeFilesystem, err, msg)
	}

	if err := write(tmp); err != nil {
		return cleanup(err, "failed to write "+filepath.Base(path))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err, "failed to sync "+filepath.Base(path))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to close "+filepath.Base(path))
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to set permissions")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to rename temporary file")
	}
	return nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// SavedCount returns the number of photos written by this manager.
func (m *Manager) SavedCount() int64 {
	return m.savedFiles.Load()
}

// SavedBytes returns the total bytes written by this manager.
func (m *Manager) SavedBytes() int64 {
	return m.savedBytes.Load()
}
