package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"recipebox"
	"recipebox/source"
)

type Sharer interface {
	PostRecipe(ctx context.Context, channel string, recipe recipebox.Recipe) error
}

type RecipeShare struct {
	source  source.Source
	sharer  Sharer
	channel string
}

func NewRecipeShare(src source.Source, sharer Sharer, channel string) *RecipeShare {
	return &RecipeShare{source: src, sharer: sharer, channel: channel}
}

func (t *RecipeShare) Name() string  { return "recipe_share" }
func (t *RecipeShare) Title() string { return "Share Recipe" }
func (t *RecipeShare) Description() string {
	return "Posts a recipe summary to a Slack channel."
}

func (t *RecipeShare) InputSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"id":      {Type: "string"},
		"channel": {Type: "string"},
	}, "id")
}

func (t *RecipeShare) OutputSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"uri":     {Type: "string"},
		"channel": {Type: "string"},
	}, "uri", "channel")
}

func (t *RecipeShare) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	id := stringArg(input, "id")
	if id == "" {
		return nil, fmt.Errorf("recipe_share: id is required")
	}
	channel := stringArg(input, "channel")
	if channel == "" {
		channel = t.channel
	}

	recipe, err := source.FetchByID(ctx, t.source, id)
	if err != nil {
		return nil, err
	}
	if err := t.sharer.PostRecipe(ctx, channel, recipe); err != nil {
		return nil, fmt.Errorf("share recipe: %w", err)
	}

	return map[string]any{"uri": recipe.URI, "channel": channel}, nil
}
