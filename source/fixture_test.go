package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox"
	"recipebox/storage"
)

func labels(result recipebox.SearchResult) []string {
	out := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		out = append(out, h.Recipe.Label)
	}
	return out
}

func TestFixture_Search(t *testing.T) {
	blob := fixtureBlob(t,
		hit("1", "Spicy Tofu Stir Fry", "vegan", "vegetarian"),
		hit("2", "Banana Bread", "vegetarian"),
		hit("3", "Tofu Scramble", "vegan"),
		hit("4", "Chicken Curry"),
	)

	tests := []struct {
		name    string
		query   string
		filters map[string]string
		want    []string
	}{
		{
			name:  "empty query returns everything in order",
			query: "",
			want:  []string{"Spicy Tofu Stir Fry", "Banana Bread", "Tofu Scramble", "Chicken Curry"},
		},
		{
			name:  "substring match is case-insensitive",
			query: "tofu",
			want:  []string{"Spicy Tofu Stir Fry", "Tofu Scramble"},
		},
		{
			name:  "no match",
			query: "lasagna",
			want:  []string{},
		},
		{
			name:    "health filter",
			filters: map[string]string{"health": "vegan"},
			want:    []string{"Spicy Tofu Stir Fry", "Tofu Scramble"},
		},
		{
			name:    "health filter is case-sensitive",
			filters: map[string]string{"health": "Vegan"},
			want:    []string{},
		},
		{
			name:    "query and filter conjunction",
			query:   "BREAD",
			filters: map[string]string{"health": "vegan"},
			want:    []string{},
		},
		{
			name:    "unknown filters are ignored",
			query:   "curry",
			filters: map[string]string{"cuisineType": "indian", "random": "true"},
			want:    []string{"Chicken Curry"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewFixture(blob).Search(context.Background(), tt.query, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, labels(result))
			assert.Equal(t, len(tt.want), result.Count)
			assert.Equal(t, len(tt.want), result.To)
		})
	}
}

func TestFixture_Envelope(t *testing.T) {
	src := NewFixture(fixtureBlob(t, hit("1", "Spicy Tofu Stir Fry"), hit("2", "Banana Bread")))

	result, err := src.Search(context.Background(), "tofu", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.From)
	assert.Nil(t, result.Links.Next)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "https://api.edamam.com/api/recipes/v2/1", result.Hits[0].Links.Self.Href)

	empty, err := src.Search(context.Background(), "nothing", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.From)
	assert.NotNil(t, empty.Hits)
}

func TestFixture_Failures(t *testing.T) {
	t.Run("missing fixture", func(t *testing.T) {
		_, err := NewFixture(storage.NewFileBlob("testdata/does-not-exist.json")).Search(context.Background(), "", nil)
		var fe *recipebox.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "testdata/does-not-exist.json", fe.URL)
	})

	t.Run("corrupt fixture", func(t *testing.T) {
		_, err := NewFixture(storage.NewMemoryBlob([]byte("invalid json"))).Search(context.Background(), "", nil)
		var fe *recipebox.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Contains(t, err.Error(), "parse fixture")
	})
}

func TestHTTPBlob(t *testing.T) {
	fixture := `{"from":1,"to":1,"count":1,"hits":[{"recipe":{"uri":"` + uriPrefix + `5","label":"Pasta"},"_links":{}}]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recipes.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixture)) // nolint: errcheck
	}))
	defer server.Close()

	t.Run("fetched fixture", func(t *testing.T) {
		src := NewFixture(NewHTTPBlob(server.URL+"/recipes.json", server.Client()))
		result, err := src.Search(context.Background(), "pasta", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Pasta"}, labels(result))
	})

	t.Run("non-success status", func(t *testing.T) {
		src := NewFixture(NewHTTPBlob(server.URL+"/missing.json", server.Client()))
		_, err := src.Search(context.Background(), "", nil)
		var fe *recipebox.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	})
}
