package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalFiles keeps uploaded payment proofs on the local filesystem.
type LocalFiles struct {
	Root string
}

func NewLocalFiles(root string) *LocalFiles {
	return &LocalFiles{Root: root}
}

// Save writes data under dir and returns the path it was stored at.
func (l *LocalFiles) Save(dir, originalName string, data []byte) (string, error) {
	target := filepath.Join(l.Root, dir)
	if err := os.MkdirAll(target, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	filename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102-150405"), uuid.New().String(), ext)
	path := filepath.Join(target, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// Remove deletes path; a file that is already gone is not an error.
func (l *LocalFiles) Remove(path string) error {
	if path == "" {
		return nil
	}
	clean := filepath.Clean(path)
	root := filepath.Clean(l.Root)
	if clean != root && !strings.HasPrefix(clean, root+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to remove %s outside %s", clean, root)
	}
	if err := os.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
