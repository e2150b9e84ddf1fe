package staticlibrary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"snowviz/internal/app/ports"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestProvider_IndexAndFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "problems/p1.pddl", "(character_at loc_1_1)")
	writeFile(t, root, "domain.pddl", "(define (domain snowman_basic))")
	writeFile(t, root, "plans/p1.plan", "goal")
	writeFile(t, root, "plans/p1.txt", "goal")
	writeFile(t, root, "README.md", "ignored")

	p := Provider{Root: root}
	index, err := p.Index(context.Background())
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	want := []ports.LibraryEntry{
		{Path: "domain.pddl", Kind: "domain", Size: 31},
		{Path: "plans/p1.plan", Kind: "plan", Size: 4},
		{Path: "plans/p1.txt", Kind: "plan", Size: 4},
		{Path: "problems/p1.pddl", Kind: "problem", Size: 22},
	}
	if len(index) != len(want) {
		t.Fatalf("index=%+v want %+v", index, want)
	}
	for i := range want {
		if index[i] != want[i] {
			t.Fatalf("entry %d=%+v want %+v", i, index[i], want[i])
		}
	}

	b, err := p.File(context.Background(), "plans/p1.plan")
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if string(b) != "goal" {
		t.Fatalf("unexpected file content: %q", string(b))
	}
}

func TestProvider_MissingRootIsEmpty(t *testing.T) {
	p := Provider{Root: filepath.Join(t.TempDir(), "nope")}
	index, err := p.Index(context.Background())
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if len(index) != 0 {
		t.Fatalf("expected empty index, got %+v", index)
	}
}

func TestProvider_FileErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.md", "x")
	p := Provider{Root: root}

	if _, err := p.File(context.Background(), "missing.plan"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := p.File(context.Background(), "notes.md"); !errors.Is(err, ErrInvalidLibraryPath) {
		t.Fatalf("expected unsupported extension to be rejected, got %v", err)
	}
	if _, err := p.File(context.Background(), " "); !errors.Is(err, ErrInvalidLibraryPath) {
		t.Fatalf("expected blank path to be rejected, got %v", err)
	}
}

func TestProvider_FileRejectsPathTraversal(t *testing.T) {
	root := t.TempDir()
	parent := filepath.Dir(root)
	outsidePath := filepath.Join(parent, "outside.plan")
	if err := os.WriteFile(outsidePath, []byte("goal"), 0o644); err != nil {
		t.Fatalf("write outside: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(outsidePath) })

	p := Provider{Root: root}

	if _, err := p.File(context.Background(), "../outside.plan"); !errors.Is(err, ErrInvalidLibraryPath) {
		t.Fatalf("expected path traversal to be rejected, got %v", err)
	}
}
