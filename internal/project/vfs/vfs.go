// Package vfs provides the file system abstraction the resolver and the
// configuration loader read through.
//
// Only the read side is exposed to the engine: the host owns the files, and
// the engine never writes to a project. OSFS backs production use and MemFS
// backs tests.
package vfs

import (
	"io/fs"
	"time"
)

// FS is a read-only file system view.
type FS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// Exists reports whether a regular file exists at path.
	Exists(path string) bool

	// WalkDir walks the tree rooted at root in lexical order.
	WalkDir(root string, fn WalkDirFunc) error
}

// FileInfo describes a file or directory.
type FileInfo struct {
	path    string
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

// NewFileInfo creates a FileInfo.
func NewFileInfo(path, name string, size int64, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{path: path, name: name, size: size, modTime: modTime, isDir: isDir}
}

// Path returns the full path.
func (fi FileInfo) Path() string { return fi.path }

// Name returns the base name.
func (fi FileInfo) Name() string { return fi.name }

// Size returns the file size in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir returns true if this is a directory.
func (fi FileInfo) IsDir() bool { return fi.isDir }

// WalkDirFunc is called for every entry visited by WalkDir. Returning
// SkipDir on a directory skips its contents.
type WalkDirFunc func(path string, info FileInfo, err error) error

// SkipDir is used as a return value from WalkDirFunc to skip a directory.
var SkipDir = fs.SkipDir

// SkipAll is used as a return value from WalkDirFunc to stop walking.
var SkipAll = fs.SkipAll
