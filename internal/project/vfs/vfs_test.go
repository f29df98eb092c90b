package vfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestMemFS_ReadStat(t *testing.T) {
	m := NewMemFS()
	mod := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	m.AddFileAt("/proj/main.aux", `\relax`, mod)

	data, err := m.ReadFile("/proj/main.aux")
	if err != nil || string(data) != `\relax` {
		t.Fatalf("ReadFile = (%q, %v)", data, err)
	}

	info, err := m.Stat("proj/../proj/main.aux")
	if err != nil {
		t.Fatalf("Stat error = %v", err)
	}
	if !info.ModTime().Equal(mod) || info.IsDir() || info.Name() != "main.aux" {
		t.Errorf("Stat = %+v", info)
	}

	if dir, err := m.Stat("/proj"); err != nil || !dir.IsDir() {
		t.Errorf("parent directory not created: %+v, %v", dir, err)
	}

	if _, err := m.ReadFile("/proj/missing.aux"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want ErrNotExist", err)
	}
	if m.Exists("/proj") {
		t.Error("Exists should be false for directories")
	}
	if !m.Exists("/proj/main.aux") {
		t.Error("Exists(/proj/main.aux) = false")
	}

	m.Remove("/proj/main.aux")
	if m.Exists("/proj/main.aux") {
		t.Error("file still exists after Remove")
	}
}

func TestMemFS_WalkDir(t *testing.T) {
	m := NewMemFS()
	m.AddFile("/p/b.tex", "")
	m.AddFile("/p/a/x.aux", "")
	m.AddFile("/p/skip/y.aux", "")
	m.AddFile("/p/c.aux", "")

	var visited []string
	err := m.WalkDir("/p", func(p string, info FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && info.Name() == "skip" {
			return SkipDir
		}
		visited = append(visited, p)
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir error = %v", err)
	}

	want := []string{"/p", "/p/a", "/p/a/x.aux", "/p/b.tex", "/p/c.aux"}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("visited = %v, want %v", visited, want)
	}
}

func TestOSFS(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sub", "main.aux")
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewOSFS()
	if !f.Exists(file) {
		t.Error("Exists(file) = false")
	}
	if f.Exists(filepath.Dir(file)) {
		t.Error("Exists(dir) = true, want false")
	}

	var files []string
	err := f.WalkDir(dir, func(p string, info FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir error = %v", err)
	}
	if len(files) != 1 || files[0] != file {
		t.Errorf("files = %v, want [%s]", files, file)
	}
}
