package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Disk stores files in a single uploads directory. Names are flattened with
// filepath.Base so a crafted name cannot escape the directory.
type Disk struct {
	dir string
}

func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) path(name string) string {
	return filepath.Join(d.dir, filepath.Base(name))
}

func (d *Disk) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(d.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (d *Disk) Write(_ context.Context, name string, data []byte) error {
	return os.WriteFile(d.path(name), data, 0o644)
}

func (d *Disk) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(d.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *Disk) Delete(_ context.Context, name string) error {
	if err := os.Remove(d.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (d *Disk) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
