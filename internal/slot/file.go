package slot

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// File stores each key as <dir>/<key>.json.
//
// Writes go to a temp file that is renamed into place while holding an
// exclusive flock on <dir>/<key>.lock, so concurrent orbit processes never
// observe a partial snapshot.
type File struct {
	dir string
}

// NewFile creates a file slot rooted at dir. The directory is created on
// first write.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

// Dir returns the directory holding the snapshot files.
func (f *File) Dir() string {
	return f.dir
}

// Path returns the snapshot file for key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *File) lockPath(key string) string {
	return filepath.Join(f.dir, key+".lock")
}

// Load reads the snapshot for key. Returns nil if the file doesn't exist.
func (f *File) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(f.Path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return data, nil
}

// Save atomically replaces the snapshot for key.
func (f *File) Save(key string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	lockFile, err := os.OpenFile(f.lockPath(key), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	path := f.Path(key)
	if existing, err := os.ReadFile(path); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read snapshot file: %w", err)
	}

	tmpFile, err := os.CreateTemp(f.dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot file: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp snapshot file: %w", err)
	}

	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename snapshot file: %w", err)
	}

	return nil
}

// Close implements io.Closer.
func (f *File) Close() error {
	return nil
}
