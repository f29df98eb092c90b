package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS implements FS using the operating system's file system.
type OSFS struct{}

// NewOSFS creates a new OS file system.
func NewOSFS() *OSFS {
	return &OSFS{}
}

var _ FS = (*OSFS)(nil)

// ReadFile reads the entire file content.
func (f *OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file information.
func (f *OSFS) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return fromOS(path, info), nil
}

// Exists reports whether a regular file exists at path.
func (f *OSFS) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// WalkDir walks the tree rooted at root.
func (f *OSFS) WalkDir(root string, fn WalkDirFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fn(path, FileInfo{}, err)
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return fn(path, FileInfo{}, infoErr)
		}
		return fn(path, fromOS(path, info), nil)
	})
}

func fromOS(path string, info os.FileInfo) FileInfo {
	return NewFileInfo(path, info.Name(), info.Size(), info.ModTime(), info.IsDir())
}
