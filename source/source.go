// Package source fetches recipes from the Edamam API or a static fixture
// behind a single Search contract.
package source

import (
	"context"
	"fmt"
	"net/http"

	"recipebox"
	"recipebox/storage"
)

// FilterHealth restricts results to recipes carrying the given health label.
const FilterHealth = "health"

// Source searches a recipe collection. query may be empty; filter keys a
// source does not recognize are ignored.
type Source interface {
	Search(ctx context.Context, query string, filters map[string]string) (recipebox.SearchResult, error)
}

// trender is implemented by sources with their own notion of trending recipes.
type trender interface {
	Trending(ctx context.Context) (recipebox.SearchResult, error)
}

// idLookup is implemented by sources that can read a single recipe directly.
type idLookup interface {
	FetchByID(ctx context.Context, id string) (recipebox.Recipe, error)
}

// DefaultTrendingQuery is used for sources that do not define Trending.
const DefaultTrendingQuery = "popular"

// Trending returns the source's popular recipes.
func Trending(ctx context.Context, src Source) (recipebox.SearchResult, error) {
	if t, ok := src.(trender); ok {
		return t.Trending(ctx)
	}
	return src.Search(ctx, DefaultTrendingQuery, nil)
}

// FetchByID looks a recipe up by its short identifier (the part of the URI
// fragment after "recipe_") or by its full URI. Sources without a direct
// lookup are searched unfiltered for the first matching hit.
func FetchByID(ctx context.Context, src Source, id string) (recipebox.Recipe, error) {
	if l, ok := src.(idLookup); ok {
		return l.FetchByID(ctx, id)
	}

	result, err := src.Search(ctx, "", nil)
	if err != nil {
		return recipebox.Recipe{}, err
	}
	for _, hit := range result.Hits {
		if recipebox.MatchesID(hit.Recipe.URI, id) {
			return hit.Recipe, nil
		}
	}
	return recipebox.Recipe{}, &recipebox.NotFoundError{ID: id}
}

type Options struct {
	HTTPClient recipebox.HTTPClient
	// FixtureBlob overrides the fixture location from the config, e.g. an S3 object.
	FixtureBlob storage.Blob
}

// New selects a Source from cfg.
func New(cfg recipebox.SourceConfig, opts Options) (Source, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	switch cfg.Kind {
	case "remote":
		return NewRemote(RemoteOpts{
			BaseURL:       cfg.BaseURL,
			AppID:         cfg.AppID,
			AppKey:        cfg.AppKey,
			TrendingQuery: cfg.TrendingQuery,
			HTTPClient:    httpClient,
		})
	case "fixture":
		blob := opts.FixtureBlob
		switch {
		case blob != nil:
		case cfg.FixtureURL != "":
			blob = NewHTTPBlob(cfg.FixtureURL, httpClient)
		default:
			blob = storage.NewFileBlob(cfg.FixturePath)
		}
		return NewFixture(blob), nil
	default:
		return nil, fmt.Errorf("unknown recipe source %q", cfg.Kind)
	}
}
