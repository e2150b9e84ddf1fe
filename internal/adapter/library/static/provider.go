package staticlibrary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"snowviz/internal/app/ports"
)

// Provider serves problem and plan files from a directory tree.
type Provider struct {
	Root string
}

var ErrInvalidLibraryPath = errors.New("invalid library filepath")

var kindByExt = map[string]string{
	".pddl": "problem",
	".plan": "plan",
	".txt":  "plan",
}

func (p Provider) Index(ctx context.Context) ([]ports.LibraryEntry, error) {
	out := []ports.LibraryEntry{}
	err := filepath.WalkDir(p.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		kind, ok := kindByExt[strings.ToLower(filepath.Ext(d.Name()))]
		if !ok {
			return nil
		}
		if kind == "problem" && strings.HasPrefix(strings.ToLower(d.Name()), "domain") {
			kind = "domain"
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(p.Root, path)
		if err != nil {
			return err
		}
		out = append(out, ports.LibraryEntry{Path: filepath.ToSlash(rel), Kind: kind, Size: info.Size()})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index library: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (p Provider) File(_ context.Context, path string) ([]byte, error) {
	safePath, err := secureJoin(p.Root, path)
	if err != nil {
		return nil, err
	}
	if _, ok := kindByExt[strings.ToLower(filepath.Ext(safePath))]; !ok {
		return nil, ErrInvalidLibraryPath
	}
	b, err := os.ReadFile(safePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, path)
	}
	return b, err
}

func secureJoin(root, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", ErrInvalidLibraryPath
	}
	if filepath.IsAbs(rel) {
		return "", ErrInvalidLibraryPath
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := filepath.Clean(filepath.Join(rootAbs, rel))
	prefix := rootAbs + string(filepath.Separator)
	if target != rootAbs && !strings.HasPrefix(target, prefix) {
		return "", ErrInvalidLibraryPath
	}
	return target, nil
}
