package vfs

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemFS implements FS in memory. Paths are slash separated and rooted at
// "/". Parent directories are created implicitly.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
	dirs  map[string]bool
	now   func() time.Time
}

type memFile struct {
	content []byte
	modTime time.Time
}

// NewMemFS creates an empty in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string]*memFile),
		dirs:  map[string]bool{"/": true},
		now:   time.Now,
	}
}

var _ FS = (*MemFS)(nil)

// ReadFile reads the entire file content.
func (m *MemFS) ReadFile(filePath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrNotExist}
	}
	content := make([]byte, len(f.content))
	copy(content, f.content)
	return content, nil
}

// Stat returns file information.
func (m *MemFS) Stat(filePath string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statLocked(cleanPath(filePath))
}

func (m *MemFS) statLocked(filePath string) (FileInfo, error) {
	if f, ok := m.files[filePath]; ok {
		return NewFileInfo(filePath, path.Base(filePath), int64(len(f.content)), f.modTime, false), nil
	}
	if m.dirs[filePath] {
		return NewFileInfo(filePath, path.Base(filePath), 0, time.Time{}, true), nil
	}
	return FileInfo{}, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
}

// Exists reports whether a file exists at path.
func (m *MemFS) Exists(filePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[cleanPath(filePath)]
	return ok
}

// WalkDir walks the tree rooted at root, visiting entries in lexical order.
func (m *MemFS) WalkDir(root string, fn WalkDirFunc) error {
	root = cleanPath(root)
	info, err := m.Stat(root)
	if err != nil {
		return fn(root, FileInfo{}, err)
	}
	err = m.walk(root, info, fn)
	if err == SkipDir || err == SkipAll {
		return nil
	}
	return err
}

func (m *MemFS) walk(p string, info FileInfo, fn WalkDirFunc) error {
	if err := fn(p, info, nil); err != nil {
		if err == SkipDir && info.IsDir() {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}
	for _, child := range m.children(p) {
		if err := m.walk(child.Path(), child, fn); err != nil {
			if err == SkipDir {
				continue
			}
			return err
		}
	}
	return nil
}

// children lists the direct entries of dir sorted by name.
func (m *MemFS) children(dir string) []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}

	var entries []FileInfo
	for _, set := range []map[string]bool{m.fileSet(), m.dirs} {
		for p := range set {
			rest, ok := strings.CutPrefix(p, prefix)
			if !ok || rest == "" || strings.Contains(rest, "/") {
				continue
			}
			info, _ := m.statLocked(p)
			entries = append(entries, info)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries
}

func (m *MemFS) fileSet() map[string]bool {
	set := make(map[string]bool, len(m.files))
	for p := range m.files {
		set[p] = true
	}
	return set
}

// AddFile writes a file, creating parent directories. The modification
// time is the current clock reading.
func (m *MemFS) AddFile(filePath, content string) {
	m.AddFileAt(filePath, content, m.now())
}

// AddFileAt writes a file with an explicit modification time.
func (m *MemFS) AddFileAt(filePath, content string, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = cleanPath(filePath)
	for dir := path.Dir(filePath); !m.dirs[dir]; dir = path.Dir(dir) {
		m.dirs[dir] = true
	}
	m.files[filePath] = &memFile{content: []byte(content), modTime: modTime}
}

// Remove deletes a file. Missing files are ignored.
func (m *MemFS) Remove(filePath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, cleanPath(filePath))
}

func cleanPath(p string) string {
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
