package source

import (
	"context"
	"errors"
	"sync/atomic"

	"recipebox"
)

// ErrStale is returned for a search that a newer search superseded while it
// was in flight.
var ErrStale = errors.New("search superseded by a newer one")

// Latest tags every search with a generation number and reports ErrStale for
// responses that arrive after a newer search started.
type Latest struct {
	src        Source
	generation atomic.Uint64
}

func NewLatest(src Source) *Latest {
	return &Latest{src: src}
}

func (l *Latest) Search(ctx context.Context, query string, filters map[string]string) (recipebox.SearchResult, error) {
	gen := l.generation.Add(1)
	result, err := l.src.Search(ctx, query, filters)
	if l.generation.Load() != gen {
		return recipebox.SearchResult{}, ErrStale
	}
	return result, err
}

// Trending and FetchByID are not generation tracked; they never compete with a
// typed query.
func (l *Latest) Trending(ctx context.Context) (recipebox.SearchResult, error) {
	return Trending(ctx, l.src)
}

func (l *Latest) FetchByID(ctx context.Context, id string) (recipebox.Recipe, error) {
	return FetchByID(ctx, l.src, id)
}
