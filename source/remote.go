package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"recipebox"
)

// Remote searches the Edamam recipes v2 API. Filters are passed through as
// query parameters and evaluated by the API.
type Remote struct {
	baseURL       string
	appID         string
	appKey        string
	trendingQuery string
	httpClient    recipebox.HTTPClient
}

type RemoteOpts struct {
	BaseURL       string
	AppID         string
	AppKey        string
	TrendingQuery string
	HTTPClient    recipebox.HTTPClient
}

func NewRemote(opts RemoteOpts) (*Remote, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("remote source: base URL is required")
	}
	if opts.AppID == "" || opts.AppKey == "" {
		return nil, fmt.Errorf("remote source: EDAMAM_APP_ID and EDAMAM_APP_KEY must be set")
	}
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("remote source: HTTP client is required")
	}

	trendingQuery := opts.TrendingQuery
	if trendingQuery == "" {
		trendingQuery = DefaultTrendingQuery
	}

	return &Remote{
		baseURL:       opts.BaseURL,
		appID:         opts.AppID,
		appKey:        opts.AppKey,
		trendingQuery: trendingQuery,
		httpClient:    opts.HTTPClient,
	}, nil
}

func (r *Remote) Search(ctx context.Context, query string, filters map[string]string) (recipebox.SearchResult, error) {
	params := url.Values{}
	for k, v := range filters {
		params.Set(k, v)
	}
	params.Set("type", "public")
	params.Set("q", query)
	r.sign(params)

	// Credentials stay out of errors and logs.
	redacted := r.baseURL + "?q=" + url.QueryEscape(query)

	var result recipebox.SearchResult
	if err := r.fetch(ctx, "search", r.baseURL+"?"+params.Encode(), redacted, &result); err != nil {
		return recipebox.SearchResult{}, err
	}
	if result.Hits == nil {
		result.Hits = []recipebox.Hit{}
	}
	return result, nil
}

// Trending asks the API for a random selection of the trending query.
func (r *Remote) Trending(ctx context.Context) (recipebox.SearchResult, error) {
	return r.Search(ctx, r.trendingQuery, map[string]string{"random": "true"})
}

// FetchByID reads a single recipe from the API. The API has no empty-query
// search, so the recipe endpoint is used instead of scanning results.
func (r *Remote) FetchByID(ctx context.Context, id string) (recipebox.Recipe, error) {
	short := recipebox.ExtractRecipeID(id)
	params := url.Values{}
	params.Set("type", "public")
	r.sign(params)

	path := r.baseURL + "/" + url.PathEscape(short)

	var hit recipebox.Hit
	err := r.fetch(ctx, "get", path+"?"+params.Encode(), path, &hit)
	var fe *recipebox.FetchError
	if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
		return recipebox.Recipe{}, &recipebox.NotFoundError{ID: id}
	}
	if err != nil {
		return recipebox.Recipe{}, err
	}
	if hit.Recipe.URI == "" {
		return recipebox.Recipe{}, &recipebox.NotFoundError{ID: id}
	}
	return hit.Recipe, nil
}

func (r *Remote) sign(params url.Values) {
	params.Set("app_id", r.appID)
	params.Set("app_key", r.appKey)
}

func (r *Remote) fetch(ctx context.Context, op, endpoint, redacted string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &recipebox.FetchError{Op: op, URL: redacted, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		slog.Error("SOURCE: Request failed", "url", redacted, "error", err)
		return &recipebox.FetchError{Op: op, URL: redacted, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.Error("SOURCE: API error", "url", redacted, "status", resp.Status, "body", string(body))
		return &recipebox.FetchError{Op: op, URL: redacted, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &recipebox.FetchError{Op: op, URL: redacted, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
