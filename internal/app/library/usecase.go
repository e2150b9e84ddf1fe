package library

import (
	"context"

	"snowviz/internal/app/ports"
)

type UseCase struct {
	Provider ports.LibraryProvider
}

func (u UseCase) Index(ctx context.Context) ([]ports.LibraryEntry, error) {
	return u.Provider.Index(ctx)
}

func (u UseCase) File(ctx context.Context, path string) ([]byte, error) {
	return u.Provider.File(ctx, path)
}
