package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileSaver writes result reports into a download directory
type FileSaver struct {
	dir       string
	overwrite bool
}

// NewFileSaver creates a saver for dir. Unless overwrite is set, existing
// files are kept and the new file gets a " (n)" suffix.
func NewFileSaver(dir string, overwrite bool) *FileSaver {
	return &FileSaver{
		dir:       dir,
		overwrite: overwrite,
	}
}

// Save writes data under filename and returns the final path. The bytes go
// to a temporary file in the same directory first, which is renamed into
// place, and removed again on any failure.
func (s *FileSaver) Save(data []byte, filename string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	localPath := filepath.Join(s.dir, filepath.Base(filename))
	if !s.overwrite {
		localPath = resolveFileNameConflict(localPath)
	}

	tmp, err := os.CreateTemp(s.dir, ".tfbv-*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file content: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		logrus.Debugf("FileSaver: chmod %s: %v", tmpPath, err)
	}

	if err := os.Rename(tmpPath, localPath); err != nil {
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}
	committed = true

	logrus.Infof("File saved successfully to: %s", localPath)
	return localPath, nil
}

func resolveFileNameConflict(originalPath string) string {
	if _, err := os.Stat(originalPath); os.IsNotExist(err) {
		return originalPath
	}

	ext := filepath.Ext(originalPath)
	baseName := originalPath[:len(originalPath)-len(ext)]

	for i := 1; i < 1000; i++ {
		newPath := fmt.Sprintf("%s (%d)%s", baseName, i, ext)
		if _, err := os.Stat(newPath); os.IsNotExist(err) {
			return newPath
		}
	}

	// If we can't find a unique name after 999 attempts, use the pid
	return fmt.Sprintf("%s_%d%s", baseName, os.Getpid(), ext)
}
