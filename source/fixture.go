package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"recipebox"
	"recipebox/storage"
)

// Fixture serves a static SearchResult document and filters it locally:
// a hit matches when the query is empty or a case-insensitive substring of
// the recipe label, and every recognized filter matches.
type Fixture struct {
	blob storage.Blob
}

func NewFixture(blob storage.Blob) *Fixture {
	return &Fixture{blob: blob}
}

func (f *Fixture) Search(ctx context.Context, query string, filters map[string]string) (recipebox.SearchResult, error) {
	all, err := f.load(ctx)
	if err != nil {
		return recipebox.SearchResult{}, err
	}

	needle := strings.ToLower(query)
	hits := make([]recipebox.Hit, 0, len(all.Hits))
	for _, hit := range all.Hits {
		if matches(hit.Recipe, needle, filters) {
			hits = append(hits, hit)
		}
	}

	result := recipebox.SearchResult{Count: len(hits), To: len(hits), Hits: hits}
	if len(hits) > 0 {
		result.From = 1
	}
	return result, nil
}

// Trending returns the whole fixture.
func (f *Fixture) Trending(ctx context.Context) (recipebox.SearchResult, error) {
	return f.Search(ctx, "", nil)
}

func (f *Fixture) load(ctx context.Context) (recipebox.SearchResult, error) {
	b, err := f.blob.Load(ctx)
	if err != nil {
		var fe *recipebox.FetchError
		if errors.As(err, &fe) {
			return recipebox.SearchResult{}, err
		}
		return recipebox.SearchResult{}, &recipebox.FetchError{Op: "fixture", URL: blobName(f.blob), Err: err}
	}

	var result recipebox.SearchResult
	if err := json.Unmarshal(b, &result); err != nil {
		return recipebox.SearchResult{}, &recipebox.FetchError{Op: "fixture", URL: blobName(f.blob), Err: fmt.Errorf("parse fixture: %w", err)}
	}
	return result, nil
}

func matches(r recipebox.Recipe, needle string, filters map[string]string) bool {
	if needle != "" && !strings.Contains(strings.ToLower(r.Label), needle) {
		return false
	}
	for key, value := range filters {
		if key == FilterHealth && !r.HasHealthLabel(value) {
			return false
		}
	}
	return true
}

func blobName(b storage.Blob) string {
	switch v := b.(type) {
	case *storage.FileBlob:
		return v.FilePath
	case *HTTPBlob:
		return v.url
	default:
		return fmt.Sprintf("%T", b)
	}
}

// HTTPBlob fetches a fixture document over HTTP.
type HTTPBlob struct {
	url        string
	httpClient recipebox.HTTPClient
}

func NewHTTPBlob(url string, httpClient recipebox.HTTPClient) *HTTPBlob {
	return &HTTPBlob{url: url, httpClient: httpClient}
}

func (b *HTTPBlob) Load(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, &recipebox.FetchError{Op: "fixture", URL: b.url, Err: err}
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, &recipebox.FetchError{Op: "fixture", URL: b.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &recipebox.FetchError{Op: "fixture", URL: b.url, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
