package tools

import (
	"context"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"recipebox"
	"recipebox/source"
	"recipebox/state"
)

// genericQuery stands in for an empty query when only dietary filters are active.
const genericQuery = "meal"

type RecipeSearch struct {
	state  *state.Container
	source source.Source
}

func NewRecipeSearch(st *state.Container, src source.Source) *RecipeSearch {
	return &RecipeSearch{state: st, source: src}
}

func (t *RecipeSearch) Name() string  { return "recipe_search" }
func (t *RecipeSearch) Title() string { return "Search Recipes" }
func (t *RecipeSearch) Description() string {
	return "Searches recipes by name. Saved dietary preferences apply as a health filter unless one is given; non-empty queries are added to the search history."
}

func (t *RecipeSearch) InputSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"query":   {Type: "string"},
		"health":  {Type: "string"},
		"filters": {Type: "object"},
	})
}

func (t *RecipeSearch) OutputSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"query":   {Type: "string"},
		"filters": {Type: "object"},
		"count":   {Type: "integer"},
		"recipes": recipeArraySchema(),
	}, "count", "recipes")
}

func (t *RecipeSearch) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	query := strings.TrimSpace(stringArg(input, "query"))
	if query != "" {
		if err := recipebox.ValidateQuery(query); err != nil {
			return nil, err
		}
	}

	filters, err := stringMapArg(input, "filters")
	if err != nil {
		return nil, err
	}
	if health := stringArg(input, "health"); health != "" {
		filters[source.FilterHealth] = health
	}

	preferenceApplied := false
	if _, ok := filters[source.FilterHealth]; !ok {
		// Only one health value can be sent; the most recently selected preference wins.
		if prefs := t.state.DietaryPreferences(); len(prefs) > 0 {
			filters[source.FilterHealth] = prefs[len(prefs)-1]
			preferenceApplied = true
		}
	}

	searchQuery := query
	if query != "" {
		if err := t.state.AddToSearchHistory(ctx, query); err != nil {
			slog.Warn("TOOLS: Failed to record search history", "query", query, "error", err)
		}
	} else if preferenceApplied {
		searchQuery = genericQuery
	}

	result, err := t.source.Search(ctx, searchQuery, filters)
	if err != nil {
		return nil, err
	}

	return toMap(struct {
		Query   string             `json:"query"`
		Filters map[string]string  `json:"filters"`
		Count   int                `json:"count"`
		Recipes []recipebox.Recipe `json:"recipes"`
	}{
		Query:   searchQuery,
		Filters: filters,
		Count:   len(result.Hits),
		Recipes: result.Recipes(),
	})
}
