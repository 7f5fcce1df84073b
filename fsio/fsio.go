// Package fsio declares the narrow file-system surface the core depends
// on, so a local-disk or remote-object-store backing can be substituted
// without touching callers.
package fsio

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the full capability set a persistence-aware caller may
// need. The core itself only reads (Schedule:File evaluation); writers
// accept a FileSystem so serialized documents can land anywhere.
type FileSystem interface {
	ReadBytes(path string) ([]byte, error)
	WriteBytes(path string, data []byte) error
	ReadText(path string) (string, error)
	WriteText(path, text string) error
	Exists(path string) bool
	MakeDirs(path string) error
	Copy(src, dst string) error
	Glob(pattern string) ([]string, error)
	Remove(path string) error
}

// Disk is the local-disk FileSystem.
type Disk struct{}

func (Disk) ReadBytes(path string) ([]byte, error) { return os.ReadFile(path) }

func (Disk) WriteBytes(path string, data []byte) error {
	return os.WriteFile(path, data, fs.FileMode(0o644))
}

func (d Disk) ReadText(path string) (string, error) {
	b, err := d.ReadBytes(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d Disk) WriteText(path, text string) error {
	return d.WriteBytes(path, []byte(text))
}

func (Disk) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (Disk) MakeDirs(path string) error { return os.MkdirAll(path, fs.FileMode(0o755)) }

func (d Disk) Copy(src, dst string) error {
	b, err := d.ReadBytes(src)
	if err != nil {
		return err
	}
	if err := d.MakeDirs(filepath.Dir(dst)); err != nil {
		return err
	}
	return d.WriteBytes(dst, b)
}

func (Disk) Glob(pattern string) ([]string, error) { return filepath.Glob(pattern) }

func (Disk) Remove(path string) error { return os.Remove(path) }
