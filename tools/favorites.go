package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"recipebox"
	"recipebox/source"
	"recipebox/state"
)

type favoritesOutput struct {
	Favorite  *bool              `json:"favorite,omitempty"`
	URI       string             `json:"uri,omitempty"`
	Count     int                `json:"count"`
	Favorites []recipebox.Recipe `json:"favorites"`
}

func favoritesSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"favorite":  {Type: "boolean"},
		"uri":       {Type: "string"},
		"count":     {Type: "integer"},
		"favorites": recipeArraySchema(),
	}, "count", "favorites")
}

func idSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"id": {Type: "string"},
	}, "id")
}

func favoritesResult(st *state.Container, uri string, favorite *bool) (map[string]any, error) {
	favorites := st.Favorites()
	return toMap(favoritesOutput{Favorite: favorite, URI: uri, Count: len(favorites), Favorites: favorites})
}

// findFavorite resolves an id or uri against the saved favorites.
func findFavorite(st *state.Container, id string) (recipebox.Recipe, bool) {
	for _, r := range st.Favorites() {
		if recipebox.MatchesID(r.URI, id) {
			return r, true
		}
	}
	return recipebox.Recipe{}, false
}

type FavoriteAdd struct {
	state  *state.Container
	source source.Source
}

func NewFavoriteAdd(st *state.Container, src source.Source) *FavoriteAdd {
	return &FavoriteAdd{state: st, source: src}
}

func (t *FavoriteAdd) Name() string  { return "favorite_add" }
func (t *FavoriteAdd) Title() string { return "Add Favorite" }
func (t *FavoriteAdd) Description() string {
	return "Looks a recipe up by id or uri and saves it to favorites. Saving an existing favorite changes nothing."
}
func (t *FavoriteAdd) InputSchema() *jsonschema.Schema  { return idSchema() }
func (t *FavoriteAdd) OutputSchema() *jsonschema.Schema { return favoritesSchema() }

func (t *FavoriteAdd) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	id := stringArg(input, "id")
	if id == "" {
		return nil, fmt.Errorf("favorite_add: id is required")
	}

	recipe, err := source.FetchByID(ctx, t.source, id)
	if err != nil {
		return nil, err
	}
	if err := t.state.AddFavorite(ctx, recipe); err != nil {
		return nil, err
	}

	favorite := true
	return favoritesResult(t.state, recipe.URI, &favorite)
}

type FavoriteRemove struct {
	state *state.Container
}

func NewFavoriteRemove(st *state.Container) *FavoriteRemove {
	return &FavoriteRemove{state: st}
}

func (t *FavoriteRemove) Name() string  { return "favorite_remove" }
func (t *FavoriteRemove) Title() string { return "Remove Favorite" }
func (t *FavoriteRemove) Description() string {
	return "Removes a recipe from favorites by id or uri. Removing a recipe that is not saved changes nothing."
}
func (t *FavoriteRemove) InputSchema() *jsonschema.Schema  { return idSchema() }
func (t *FavoriteRemove) OutputSchema() *jsonschema.Schema { return favoritesSchema() }

func (t *FavoriteRemove) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	id := stringArg(input, "id")
	if id == "" {
		return nil, fmt.Errorf("favorite_remove: id is required")
	}

	uri := id
	if r, ok := findFavorite(t.state, id); ok {
		uri = r.URI
	}
	if err := t.state.RemoveFavorite(ctx, uri); err != nil {
		return nil, err
	}

	favorite := false
	return favoritesResult(t.state, uri, &favorite)
}

type FavoriteToggle struct {
	state  *state.Container
	source source.Source
}

func NewFavoriteToggle(st *state.Container, src source.Source) *FavoriteToggle {
	return &FavoriteToggle{state: st, source: src}
}

func (t *FavoriteToggle) Name() string  { return "favorite_toggle" }
func (t *FavoriteToggle) Title() string { return "Toggle Favorite" }
func (t *FavoriteToggle) Description() string {
	return "Removes the recipe from favorites when saved, otherwise looks it up and saves it."
}
func (t *FavoriteToggle) InputSchema() *jsonschema.Schema  { return idSchema() }
func (t *FavoriteToggle) OutputSchema() *jsonschema.Schema { return favoritesSchema() }

func (t *FavoriteToggle) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	id := stringArg(input, "id")
	if id == "" {
		return nil, fmt.Errorf("favorite_toggle: id is required")
	}

	if saved, ok := findFavorite(t.state, id); ok {
		if err := t.state.RemoveFavorite(ctx, saved.URI); err != nil {
			return nil, err
		}
		favorite := false
		return favoritesResult(t.state, saved.URI, &favorite)
	}

	recipe, err := source.FetchByID(ctx, t.source, id)
	if err != nil {
		return nil, err
	}
	if err := t.state.AddFavorite(ctx, recipe); err != nil {
		return nil, err
	}
	favorite := true
	return favoritesResult(t.state, recipe.URI, &favorite)
}

type FavoritesList struct {
	state *state.Container
}

func NewFavoritesList(st *state.Container) *FavoritesList {
	return &FavoritesList{state: st}
}

func (t *FavoritesList) Name() string                     { return "favorites_list" }
func (t *FavoritesList) Title() string                    { return "List Favorites" }
func (t *FavoritesList) Description() string              { return "Lists saved favorite recipes in the order they were saved." }
func (t *FavoritesList) InputSchema() *jsonschema.Schema  { return objectSchema(nil) }
func (t *FavoritesList) OutputSchema() *jsonschema.Schema { return favoritesSchema() }

func (t *FavoritesList) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	return favoritesResult(t.state, "", nil)
}
