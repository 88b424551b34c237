package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	tests := []struct {
		name string
		key  string
		data []byte
	}{
		{
			name: "favorites slot",
			key:  KeyFavorites,
			data: []byte(`[{"uri":"http://www.edamam.com/ontologies/edamam.owl#recipe_1","label":"Toast"}]`),
		},
		{
			name: "empty history slot",
			key:  KeySearchHistory,
			data: []byte(`[]`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewFileStore(t.TempDir())
			ctx := context.Background()

			require.NoError(t, store.Save(ctx, tt.key, tt.data))

			loaded, err := store.Load(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.data, loaded)
		})
	}

	t.Run("save creates the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "store")
		store := NewFileStore(dir)

		require.NoError(t, store.Save(context.Background(), KeyDietaryPreferences, []byte(`["vegan"]`)))

		b, err := os.ReadFile(filepath.Join(dir, "dietaryPreferences.json"))
		require.NoError(t, err)
		assert.Equal(t, `["vegan"]`, string(b))
	})

	t.Run("save overwrites and leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileStore(dir)
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, KeySearchHistory, []byte(`["a"]`)))
		require.NoError(t, store.Save(ctx, KeySearchHistory, []byte(`["b","a"]`)))

		loaded, err := store.Load(ctx, KeySearchHistory)
		require.NoError(t, err)
		assert.Equal(t, `["b","a"]`, string(loaded))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("load missing key", func(t *testing.T) {
		store := NewFileStore(t.TempDir())
		_, err := store.Load(context.Background(), KeyFavorites)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFileBlob(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("valid fixture file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "recipes.json")
		data := []byte(`{"from":1,"to":1,"count":1,"hits":[]}`)
		require.NoError(t, os.WriteFile(filePath, data, 0644))

		loaded, err := NewFileBlob(filePath).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, data, loaded)
	})

	t.Run("load nonexistent file", func(t *testing.T) {
		_, err := NewFileBlob(filepath.Join(tmpDir, "nonexistent.json")).Load(context.Background())
		assert.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})
}
