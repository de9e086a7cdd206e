package fs

import (
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/fx"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// SidecarFS wraps the filesystem operations used by the sidecar.
type SidecarFS interface {
	ExecutableDir() (string, error)
	MkdirAll(path string) error
	DirExists(path string) (bool, error)
	FileExists(path string) (bool, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data string) error
	Remove(name string) error
}

type fsImpl struct{}

// New creates a new SidecarFS.
func New() SidecarFS {
	return fsImpl{}
}

// ExecutableDir returns the directory containing the running binary, with
// symlinks resolved. Launcher scripts are located relative to it by default.
func (fsImpl) ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(resolved), nil
}

// MkdirAll creates a directory and all its parents.
func (fsImpl) MkdirAll(path string) error { return os.MkdirAll(path, os.ModePerm) }

// ReadDir reads all the items in a directory (non-recursive).
func (fsImpl) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (fsImpl) DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (fsImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (fsImpl) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (fsImpl) WriteFile(name string, data string) error {
	return os.WriteFile(name, []byte(data), 0644)
}

func (fsImpl) Remove(name string) error {
	return os.Remove(name)
}
