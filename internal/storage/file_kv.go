package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileKV stores each key as a JSON file in a directory.
type FileKV struct {
	dir string
}

// NewFileKV returns a FileKV rooted at dir. The directory is created on first write.
func NewFileKV(dir string) *FileKV {
	return &FileKV{dir: dir}
}

// Path returns the file that holds key.
func (f *FileKV) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set writes through a temporary file so a crash never leaves a partial value.
func (f *FileKV) Set(key string, value []byte) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.Path(key))
}

func (f *FileKV) Delete(key string) error {
	err := os.Remove(f.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileKV) Probe() error {
	if err := f.Set(probeKey, []byte("{}")); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return f.Delete(probeKey)
}
