package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"recipebox"
	"recipebox/source"
	"recipebox/state"
)

type RecipeGet struct {
	state  *state.Container
	source source.Source
}

func NewRecipeGet(st *state.Container, src source.Source) *RecipeGet {
	return &RecipeGet{state: st, source: src}
}

func (t *RecipeGet) Name() string  { return "recipe_get" }
func (t *RecipeGet) Title() string { return "Get Recipe" }
func (t *RecipeGet) Description() string {
	return "Gets one recipe by id or uri, with its favorite status and formatted cooking time."
}

func (t *RecipeGet) InputSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"id": {Type: "string"},
	}, "id")
}

func (t *RecipeGet) OutputSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"id":           {Type: "string"},
		"recipe":       {Type: "object"},
		"favorite":     {Type: "boolean"},
		"cooking_time": {Type: "string"},
	}, "recipe", "favorite")
}

func (t *RecipeGet) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	id := stringArg(input, "id")
	if id == "" {
		return nil, fmt.Errorf("recipe_get: id is required")
	}

	recipe, err := source.FetchByID(ctx, t.source, id)
	if err != nil {
		return nil, err
	}

	return toMap(struct {
		ID          string           `json:"id"`
		Recipe      recipebox.Recipe `json:"recipe"`
		Favorite    bool             `json:"favorite"`
		CookingTime string           `json:"cooking_time"`
	}{
		ID:          recipebox.ExtractRecipeID(recipe.URI),
		Recipe:      recipe,
		Favorite:    t.state.IsFavorite(recipe.URI),
		CookingTime: recipebox.FormatCookingTime(int(recipe.TotalTime)),
	})
}

type RecipeTrending struct {
	source source.Source
}

func NewRecipeTrending(src source.Source) *RecipeTrending {
	return &RecipeTrending{source: src}
}

func (t *RecipeTrending) Name() string  { return "recipe_trending" }
func (t *RecipeTrending) Title() string { return "Trending Recipes" }
func (t *RecipeTrending) Description() string {
	return "Lists popular recipes, optionally limited to the first limit results."
}

func (t *RecipeTrending) InputSchema() *jsonschema.Schema {
	minLimit := 0.0
	return objectSchema(map[string]*jsonschema.Schema{
		"limit": {Type: "integer", Minimum: &minLimit},
	})
}

func (t *RecipeTrending) OutputSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"count":   {Type: "integer"},
		"recipes": recipeArraySchema(),
	}, "count", "recipes")
}

func (t *RecipeTrending) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	result, err := source.Trending(ctx, t.source)
	if err != nil {
		return nil, err
	}

	recipes := result.Recipes()
	if limit := intArg(input, "limit"); limit > 0 && limit < len(recipes) {
		recipes = recipes[:limit]
	}

	return toMap(struct {
		Count   int                `json:"count"`
		Recipes []recipebox.Recipe `json:"recipes"`
	}{
		Count:   len(recipes),
		Recipes: recipes,
	})
}
