package state

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"recipebox"
	"recipebox/storage"
)

func recipe(id, label string, health ...string) recipebox.Recipe {
	return recipebox.Recipe{
		URI:          "http://www.edamam.com/ontologies/edamam.owl#recipe_" + id,
		Label:        label,
		HealthLabels: health,
	}
}

func newContainer(t *testing.T, seed map[string][]byte) (*Container, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore(seed)
	c := New(store)
	c.Init(context.Background())
	return c, store
}

func storedList[T any](t *testing.T, store storage.Store, key string) []T {
	t.Helper()
	b, err := store.Load(context.Background(), key)
	require.NoError(t, err)
	var out []T
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestInit(t *testing.T) {
	favorites, _ := json.Marshal([]recipebox.Recipe{recipe("1", "Toast")})

	t.Run("hydrates all slots", func(t *testing.T) {
		c, _ := newContainer(t, map[string][]byte{
			storage.KeyFavorites:          favorites,
			storage.KeySearchHistory:      []byte(`["pasta","tofu"]`),
			storage.KeyDietaryPreferences: []byte(`["vegan"]`),
		})

		assert.Equal(t, []recipebox.Recipe{recipe("1", "Toast")}, c.Favorites())
		assert.Equal(t, []string{"pasta", "tofu"}, c.SearchHistory())
		assert.Equal(t, []string{"vegan"}, c.DietaryPreferences())
	})

	t.Run("corrupt and missing slots start empty", func(t *testing.T) {
		c, _ := newContainer(t, map[string][]byte{
			storage.KeyFavorites: []byte(`{{{`),
		})

		assert.Empty(t, c.Favorites())
		assert.Empty(t, c.SearchHistory())
		assert.Empty(t, c.DietaryPreferences())
	})

	t.Run("unavailable store starts empty", func(t *testing.T) {
		c := New(storage.NewMemoryStoreWithError())
		c.Init(context.Background())
		assert.Empty(t, c.Favorites())
	})

	t.Run("storage is read only once", func(t *testing.T) {
		store := storage.NewMemoryStore(map[string][]byte{storage.KeySearchHistory: []byte(`["first"]`)})
		c := New(store)
		c.Init(context.Background())

		require.NoError(t, store.Save(context.Background(), storage.KeySearchHistory, []byte(`["second"]`)))
		c.Init(context.Background())

		assert.Equal(t, []string{"first"}, c.SearchHistory())
	})
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()

	t.Run("add is idempotent by uri", func(t *testing.T) {
		c, store := newContainer(t, nil)
		tofu := recipe("42", "Spicy Tofu Stir Fry")

		require.NoError(t, c.AddFavorite(ctx, tofu))
		require.NoError(t, c.AddFavorite(ctx, recipebox.Recipe{URI: tofu.URI, Label: "renamed"}))

		assert.Equal(t, []recipebox.Recipe{tofu}, c.Favorites())
		assert.Equal(t, []recipebox.Recipe{tofu}, storedList[recipebox.Recipe](t, store, storage.KeyFavorites))
	})

	t.Run("add appends in insertion order", func(t *testing.T) {
		c, _ := newContainer(t, nil)
		a, b := recipe("1", "A"), recipe("2", "B")

		require.NoError(t, c.AddFavorite(ctx, a))
		require.NoError(t, c.AddFavorite(ctx, b))

		assert.Equal(t, []recipebox.Recipe{a, b}, c.Favorites())
	})

	t.Run("add then remove restores prior state", func(t *testing.T) {
		c, store := newContainer(t, nil)
		a, b, x := recipe("1", "A"), recipe("2", "B"), recipe("3", "X")
		require.NoError(t, c.AddFavorite(ctx, a))
		require.NoError(t, c.AddFavorite(ctx, b))
		before := c.Favorites()

		require.NoError(t, c.AddFavorite(ctx, x))
		require.True(t, c.IsFavorite(x.URI))
		require.NoError(t, c.RemoveFavorite(ctx, x.URI))

		assert.Equal(t, before, c.Favorites())
		assert.False(t, c.IsFavorite(x.URI))
		assert.Equal(t, before, storedList[recipebox.Recipe](t, store, storage.KeyFavorites))
	})

	t.Run("remove keeps order of remaining", func(t *testing.T) {
		c, _ := newContainer(t, nil)
		a, b, d := recipe("1", "A"), recipe("2", "B"), recipe("3", "D")
		for _, r := range []recipebox.Recipe{a, b, d} {
			require.NoError(t, c.AddFavorite(ctx, r))
		}

		require.NoError(t, c.RemoveFavorite(ctx, b.URI))
		assert.Equal(t, []recipebox.Recipe{a, d}, c.Favorites())
	})

	t.Run("remove absent is a no-op", func(t *testing.T) {
		c, store := newContainer(t, nil)
		require.NoError(t, c.RemoveFavorite(ctx, "missing"))

		_, err := store.Load(ctx, storage.KeyFavorites)
		assert.ErrorIs(t, err, storage.ErrNotFound, "no write expected")
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		c, _ := newContainer(t, nil)
		require.NoError(t, c.AddFavorite(ctx, recipe("1", "A")))

		got := c.Favorites()
		got[0].Label = "mutated"
		assert.Equal(t, "A", c.Favorites()[0].Label)
	})
}

func TestSearchHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("most recent first", func(t *testing.T) {
		c, store := newContainer(t, nil)
		require.NoError(t, c.AddToSearchHistory(ctx, "pasta"))
		require.NoError(t, c.AddToSearchHistory(ctx, "tofu"))

		assert.Equal(t, []string{"tofu", "pasta"}, c.SearchHistory())
		assert.Equal(t, []string{"tofu", "pasta"}, storedList[string](t, store, storage.KeySearchHistory))
	})

	t.Run("caps at ten and evicts oldest", func(t *testing.T) {
		c, _ := newContainer(t, nil)
		for i := 1; i <= 11; i++ {
			require.NoError(t, c.AddToSearchHistory(ctx, fmt.Sprintf("query %d", i)))
		}

		history := c.SearchHistory()
		require.Len(t, history, MaxSearchHistory)
		assert.Equal(t, "query 11", history[0])
		assert.Equal(t, "query 2", history[9])
		assert.NotContains(t, history, "query 1")
	})

	t.Run("duplicates leave history unchanged", func(t *testing.T) {
		c, _ := newContainer(t, nil)
		require.NoError(t, c.AddToSearchHistory(ctx, "pasta"))
		require.NoError(t, c.AddToSearchHistory(ctx, "tofu"))

		require.NoError(t, c.AddToSearchHistory(ctx, "pasta"))
		assert.Equal(t, []string{"tofu", "pasta"}, c.SearchHistory())
	})

	t.Run("duplicates are case sensitive", func(t *testing.T) {
		c, _ := newContainer(t, nil)
		require.NoError(t, c.AddToSearchHistory(ctx, "pasta"))
		require.NoError(t, c.AddToSearchHistory(ctx, "Pasta"))
		assert.Equal(t, []string{"Pasta", "pasta"}, c.SearchHistory())
	})

	t.Run("input is trimmed and blanks rejected", func(t *testing.T) {
		c, _ := newContainer(t, nil)
		require.NoError(t, c.AddToSearchHistory(ctx, "   "))
		require.NoError(t, c.AddToSearchHistory(ctx, ""))
		require.NoError(t, c.AddToSearchHistory(ctx, "  curry \t"))
		require.NoError(t, c.AddToSearchHistory(ctx, "curry"))

		assert.Equal(t, []string{"curry"}, c.SearchHistory())
	})

	t.Run("clear", func(t *testing.T) {
		c, store := newContainer(t, map[string][]byte{storage.KeySearchHistory: []byte(`["a","b"]`)})
		require.NoError(t, c.ClearSearchHistory(ctx))

		assert.Empty(t, c.SearchHistory())
		assert.Empty(t, storedList[string](t, store, storage.KeySearchHistory))
	})
}

func TestUpdateDietaryPreferences(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces rather than merges", func(t *testing.T) {
		c, store := newContainer(t, nil)
		require.NoError(t, c.UpdateDietaryPreferences(ctx, []string{"vegan", "gluten-free"}))
		require.NoError(t, c.UpdateDietaryPreferences(ctx, []string{"vegetarian"}))

		assert.Equal(t, []string{"vegetarian"}, c.DietaryPreferences())
		assert.Equal(t, []string{"vegetarian"}, storedList[string](t, store, storage.KeyDietaryPreferences))
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		c, _ := newContainer(t, nil)
		require.NoError(t, c.UpdateDietaryPreferences(ctx, []string{"vegan"}))
		first := c.DietaryPreferences()
		require.NoError(t, c.UpdateDietaryPreferences(ctx, []string{"vegan", "vegan"}))

		assert.Equal(t, first, c.DietaryPreferences())
		assert.Contains(t, c.DietaryPreferences(), "vegan")
	})

	t.Run("empty clears", func(t *testing.T) {
		c, _ := newContainer(t, map[string][]byte{storage.KeyDietaryPreferences: []byte(`["vegan"]`)})
		require.NoError(t, c.UpdateDietaryPreferences(ctx, nil))
		assert.Empty(t, c.DietaryPreferences())
	})
}

func TestRestartRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(nil)

	first := New(store)
	first.Init(ctx)
	favorites := []recipebox.Recipe{
		{
			URI:             "http://www.edamam.com/ontologies/edamam.owl#recipe_42",
			Label:           "Spicy Tofu Stir Fry",
			Image:           "https://img.example/tofu.jpg",
			Source:          "Serious Eats",
			URL:             "https://example.com/tofu",
			Yield:           4,
			DietLabels:      []string{"High-Protein"},
			HealthLabels:    []string{"vegan", "vegetarian"},
			Cautions:        []string{"Soy"},
			IngredientLines: []string{"1 block tofu", "2 tbsp soy sauce"},
			Ingredients: []recipebox.Ingredient{
				{Text: "1 block tofu", Quantity: 1, Measure: "block", Food: "tofu", Weight: 400, FoodCategory: "plant-based protein", FoodID: "food_tofu", Image: "https://img.example/tofu-raw.jpg"},
				{Text: "2 tbsp soy sauce", Quantity: 2, Measure: "tablespoon", Food: "soy sauce", Weight: 32, FoodCategory: "condiments and sauces", FoodID: "food_soy"},
			},
			Calories:    812.5,
			TotalWeight: 432,
			TotalTime:   25,
			CuisineType: []string{"chinese"},
			MealType:    []string{"lunch/dinner"},
			DishType:    []string{"main course"},
		},
		recipe("7", "Banana Bread"),
	}
	for _, r := range favorites {
		require.NoError(t, first.AddFavorite(ctx, r))
	}
	require.NoError(t, first.AddToSearchHistory(ctx, "tofu"))
	require.NoError(t, first.UpdateDietaryPreferences(ctx, []string{"vegan"}))

	restarted := New(store)
	restarted.Init(ctx)

	assert.Equal(t, favorites, restarted.Favorites())
	assert.Equal(t, []string{"tofu"}, restarted.SearchHistory())
	assert.Equal(t, []string{"vegan"}, restarted.DietaryPreferences())
}

func TestPersistFailure(t *testing.T) {
	ctx := context.Background()
	c := New(storage.NewMemoryStoreWithError())
	c.Init(ctx)

	err := c.AddFavorite(ctx, recipe("1", "A"))
	assert.ErrorContains(t, err, "save favorites")
	// The in-memory state still reflects the mutation.
	assert.True(t, c.IsFavorite(recipe("1", "A").URI))
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := New(storage.NewMemoryStore(nil), WithClock(func() time.Time { return at }))
	c.Init(ctx)

	var events []recipebox.ChangeEvent
	cancel := c.Subscribe(func(e recipebox.ChangeEvent) { events = append(events, e) })

	tofu := recipe("42", "Tofu")
	require.NoError(t, c.AddFavorite(ctx, tofu))
	require.NoError(t, c.AddFavorite(ctx, tofu)) // no-op, no event
	require.NoError(t, c.AddToSearchHistory(ctx, "tofu"))
	require.NoError(t, c.AddToSearchHistory(ctx, " ")) // no-op, no event
	require.NoError(t, c.UpdateDietaryPreferences(ctx, []string{"vegan"}))
	require.NoError(t, c.RemoveFavorite(ctx, tofu.URI))
	require.NoError(t, c.ClearSearchHistory(ctx))

	kinds := make([]recipebox.ChangeKind, 0, len(events))
	ids := map[string]bool{}
	for _, e := range events {
		kinds = append(kinds, e.Kind)
		assert.Equal(t, at, e.At)
		assert.NotEmpty(t, e.ID)
		ids[e.ID] = true
	}
	assert.Len(t, ids, len(events), "event ids are unique")
	assert.Equal(t, []recipebox.ChangeKind{
		recipebox.FavoriteAdded,
		recipebox.SearchRecorded,
		recipebox.PreferencesReplaced,
		recipebox.FavoriteRemoved,
		recipebox.SearchHistoryCleared,
	}, kinds)
	assert.Equal(t, []recipebox.Recipe{tofu}, events[0].Favorites)
	assert.Equal(t, tofu.URI, events[0].Subject)
	assert.Equal(t, []string{"tofu"}, events[1].SearchHistory)

	cancel()
	require.NoError(t, c.AddFavorite(ctx, tofu))
	assert.Len(t, events, 5)
}

func TestWithMeter(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	c := New(storage.NewMemoryStore(nil), WithMeter(provider.Meter(recipebox.TracerNameState)))
	c.Init(ctx)
	require.NoError(t, c.AddFavorite(ctx, recipe("1", "A")))
	require.NoError(t, c.AddToSearchHistory(ctx, "a"))
	require.NoError(t, c.AddToSearchHistory(ctx, "a"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "state_mutations_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), total)
}
