package refs

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/texprettify/internal/project/vfs"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newl(key, num string) string {
	return `\newlabel{` + key + `}{{` + num + `}{1}}` + "\n"
}

func TestResolver_FirstSourceWins(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/ws/main.tex", `\documentclass{article}`)
	fsys.AddFileAt("/ws/main.aux", newl("lbl", "1")+newl("only-a", "A"), t0)
	fsys.AddFileAt("/ws/old/b.aux", newl("lbl", "2")+newl("only-b", "B"), t0)
	fsys.AddFileAt("/ws/a/c.aux", newl("lbl", "3")+newl("only-b", "C"), t0)

	r := New(fsys)
	got := r.Resolve(context.Background(), Request{
		DocumentPath:  "/ws/main.tex",
		DocumentText:  `\documentclass{article}`,
		WorkspaceRoot: "/ws",
	})

	want := map[string]string{"lbl": "1", "only-a": "A", "only-b": "C"}
	if !reflect.DeepEqual(got.Labels, want) {
		t.Errorf("Labels = %v, want %v", got.Labels, want)
	}
	if got.Primary != "/ws/main.aux" {
		t.Errorf("Primary = %q", got.Primary)
	}
	// Equal distance: lexical order decides between a/ and old/.
	wantSources := []string{"/ws/main.aux", "/ws/a/c.aux", "/ws/old/b.aux"}
	if !reflect.DeepEqual(got.Sources, wantSources) {
		t.Errorf("Sources = %v, want %v", got.Sources, wantSources)
	}
}

func TestResolver_DocumentAdjacentBeatsRoot(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/ws/main.tex", "\\documentclass{book}\n\\include{ch/one}\n")
	fsys.AddFile("/ws/ch/one.tex", `\section{One}`)
	fsys.AddFileAt("/ws/ch/one.aux", newl("sec:one", "1"), t0)
	fsys.AddFileAt("/ws/main.aux", newl("sec:one", "2.1")+newl("eq:x", "4"), t0)

	got := New(fsys).Resolve(context.Background(), Request{
		DocumentPath:  "/ws/ch/one.tex",
		DocumentText:  `\section{One}`,
		WorkspaceRoot: "/ws",
	})

	if got.Root != "/ws/main.tex" {
		t.Errorf("Root = %q, want /ws/main.tex", got.Root)
	}
	if got.Primary != "/ws/ch/one.aux" {
		t.Errorf("Primary = %q, want /ws/ch/one.aux", got.Primary)
	}
	if got.Labels["sec:one"] != "1" || got.Labels["eq:x"] != "4" {
		t.Errorf("Labels = %v", got.Labels)
	}
}

func TestResolver_FollowsAuxInputs(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/ws/main.tex", `\documentclass{book}`)
	fsys.AddFileAt("/ws/main.aux", `\relax`+"\n"+`\@input{ch/one.aux}`+"\n"+newl("fig:1", "1"), t0)
	fsys.AddFileAt("/ws/ch/one.aux", newl("fig:1", "9")+newl("eq:2", "2.3")+`\@input{../main.aux}`, t0)

	// A missing output directory contributes no candidates.
	got := New(fsys).Resolve(context.Background(), Request{
		DocumentPath:      "/ws/main.tex",
		DocumentText:      `\documentclass{book}`,
		OutputDirTemplate: "${rootDir}/missing",
	})

	want := map[string]string{"fig:1": "1", "eq:2": "2.3"}
	if !reflect.DeepEqual(got.Labels, want) {
		t.Errorf("Labels = %v, want %v", got.Labels, want)
	}
	wantSources := []string{"/ws/main.aux", "/ws/ch/one.aux"}
	if !reflect.DeepEqual(got.Sources, wantSources) {
		t.Errorf("Sources = %v, want %v", got.Sources, wantSources)
	}
}

func TestResolver_SearchPrefersNearest(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/ws/paper/sec/a.tex", `text`)
	fsys.AddFileAt("/ws/far/x/y/z.aux", newl("k", "far"), t0)
	fsys.AddFileAt("/ws/paper/p.aux", newl("k", "near"), t0)
	fsys.AddFileAt("/ws/paper/empty.aux", `\relax`, t0)
	fsys.AddFileAt("/ws/build/q.aux", newl("k", "ignored"), t0)

	got := New(fsys).Resolve(context.Background(), Request{
		DocumentPath:  "/ws/paper/sec/a.tex",
		DocumentText:  `text`,
		WorkspaceRoot: "/ws",
	})

	if got.Primary != "/ws/paper/p.aux" {
		t.Errorf("Primary = %q, want /ws/paper/p.aux", got.Primary)
	}
	if got.Labels["k"] != "near" {
		t.Errorf("Labels[k] = %q, want near", got.Labels["k"])
	}
	for _, s := range got.Sources {
		if s == "/ws/build/q.aux" {
			t.Error("aux file under build/ must not be merged")
		}
	}
}

func TestResolver_NoDataIsEmpty(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/ws/main.tex", `\documentclass{article}`)

	got := New(fsys).Resolve(context.Background(), Request{
		DocumentPath:  "/ws/main.tex",
		DocumentText:  `\documentclass{article}`,
		WorkspaceRoot: "/ws",
	})
	if got.Labels == nil || len(got.Labels) != 0 || got.Primary != "" {
		t.Errorf("Resolve = %+v, want empty non-nil labels", got)
	}
}

func TestResolver_CacheAndInvalidate(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/ws/main.tex", `\documentclass{article}`)
	fsys.AddFileAt("/ws/main.aux", newl("eq:1", "1"), t0)
	fsys.AddFileAt("/ws/other.aux", newl("eq:9", "9"), t0)

	r := New(fsys)
	req := Request{DocumentPath: "/ws/main.tex", DocumentText: `\documentclass{article}`, WorkspaceRoot: "/ws"}
	ctx := context.Background()

	first := r.Resolve(ctx, req)
	if first.Labels["eq:1"] != "1" {
		t.Fatalf("Labels = %v", first.Labels)
	}

	// A secondary file changing without notification is not noticed.
	fsys.AddFileAt("/ws/other.aux", newl("eq:9", "10"), t0.Add(time.Second))
	if got := r.Resolve(ctx, req); got.Labels["eq:9"] != "9" {
		t.Errorf("cached Labels[eq:9] = %q, want 9", got.Labels["eq:9"])
	}

	r.Invalidate("/ws/other.aux")
	if got := r.Resolve(ctx, req); got.Labels["eq:9"] != "10" {
		t.Errorf("after Invalidate Labels[eq:9] = %q, want 10", got.Labels["eq:9"])
	}

	// A fresher primary is picked up through its modification time.
	fsys.AddFileAt("/ws/main.aux", newl("eq:1", "2"), t0.Add(2*time.Second))
	if got := r.Resolve(ctx, req); got.Labels["eq:1"] != "2" {
		t.Errorf("Labels[eq:1] = %q, want 2", got.Labels["eq:1"])
	}

	// Cleaning the build output empties the mapping.
	fsys.Remove("/ws/main.aux")
	fsys.Remove("/ws/other.aux")
	r.Invalidate("/ws/main.aux")
	if got := r.Resolve(ctx, req); len(got.Labels) != 0 || got.Primary != "" {
		t.Errorf("after removal Resolve = %+v, want empty", got)
	}
	if last, ok := r.Last(); !ok || last.Primary != "/ws/main.aux" {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}

func TestResolver_NoDataIgnoresOtherDocuments(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/p1/a.tex", `\documentclass{article}`)
	fsys.AddFileAt("/p1/a.aux", newl("eq:1", "7"), t0)
	fsys.AddFile("/p2/b.tex", `\documentclass{article}`)

	r := New(fsys)
	ctx := context.Background()

	first := r.Resolve(ctx, Request{DocumentPath: "/p1/a.tex", DocumentText: `\documentclass{article}`, WorkspaceRoot: "/p1"})
	if first.Labels["eq:1"] != "7" {
		t.Fatalf("p1 Labels = %v", first.Labels)
	}

	got := r.Resolve(ctx, Request{DocumentPath: "/p2/b.tex", DocumentText: `\documentclass{article}`, WorkspaceRoot: "/p2"})
	if len(got.Labels) != 0 || got.Primary != "" || got.Root != "/p2/b.tex" {
		t.Errorf("p2 Resolve = %+v, want empty mapping rooted at /p2/b.tex", got)
	}
}

// countingFS counts .tex reads.
type countingFS struct {
	*vfs.MemFS
	mu    sync.Mutex
	reads int
}

func (c *countingFS) ReadFile(p string) ([]byte, error) {
	if strings.HasSuffix(p, ".tex") {
		c.mu.Lock()
		c.reads++
		c.mu.Unlock()
	}
	return c.MemFS.ReadFile(p)
}

func (c *countingFS) texReads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func TestResolver_RootWalkIsCached(t *testing.T) {
	fsys := &countingFS{MemFS: vfs.NewMemFS()}
	fsys.AddFile("/ws/main.tex", "\\documentclass{book}\n\\include{ch/one}\n")
	fsys.AddFile("/ws/ch/one.tex", `\section{One}`)
	fsys.AddFileAt("/ws/main.aux", newl("sec:one", "1"), t0)

	r := New(fsys)
	req := Request{DocumentPath: "/ws/ch/one.tex", DocumentText: `\section{One}`, WorkspaceRoot: "/ws"}
	ctx := context.Background()

	if got := r.Resolve(ctx, req); got.Root != "/ws/main.tex" || got.Labels["sec:one"] != "1" {
		t.Fatalf("Resolve = %+v", got)
	}
	walked := fsys.texReads()
	if walked == 0 {
		t.Fatal("root detection read no .tex files")
	}

	if got := r.Resolve(ctx, req); got.Root != "/ws/main.tex" {
		t.Errorf("cached Root = %q", got.Root)
	}
	if n := fsys.texReads(); n != walked {
		t.Errorf("second Resolve read %d .tex files, want none", n-walked)
	}

	r.Invalidate("/ws/main.tex")
	r.Resolve(ctx, req)
	if n := fsys.texReads(); n == walked {
		t.Error("Invalidate did not drop the cached root")
	}
}

func TestResolver_ConcurrentResolve(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/ws/main.tex", `\documentclass{article}`)
	fsys.AddFileAt("/ws/main.aux", newl("a", "1"), t0)
	for _, name := range []string{"b", "c", "d", "e"} {
		fsys.AddFileAt("/ws/"+name+"/x.aux", newl(name, name)+newl("a", name), t0)
	}

	r := New(fsys, WithJobs(2))
	req := Request{DocumentPath: "/ws/main.tex", DocumentText: `\documentclass{article}`, WorkspaceRoot: "/ws"}

	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), req)
		}()
	}
	wg.Wait()

	want := map[string]string{"a": "1", "b": "b", "c": "c", "d": "d", "e": "e"}
	for i, res := range results {
		if !reflect.DeepEqual(res.Labels, want) {
			t.Errorf("results[%d].Labels = %v, want %v", i, res.Labels, want)
		}
	}
}

func TestResolver_CancelledContext(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/ws/main.tex", `\documentclass{article}`)
	fsys.AddFileAt("/ws/main.aux", newl("a", "1"), t0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := New(fsys).Resolve(ctx, Request{DocumentPath: "/ws/main.tex", WorkspaceRoot: "/ws"})
	if len(got.Labels) != 0 {
		t.Errorf("cancelled resolve returned labels %v", got.Labels)
	}
}
