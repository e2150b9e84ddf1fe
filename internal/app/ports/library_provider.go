package ports

import "context"

type LibraryEntry struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
	Size int64  `json:"size"`
}

type LibraryProvider interface {
	Index(ctx context.Context) ([]LibraryEntry, error)
	File(ctx context.Context, path string) ([]byte, error)
}
