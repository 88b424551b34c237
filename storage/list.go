package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// LoadList reads a JSON array saved under key. A missing, unreadable or
// corrupt entry yields an empty slice: saved slots are convenience data and
// never block startup.
func LoadList[T any](ctx context.Context, store Store, key string) []T {
	b, err := store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("STORAGE: Failed to load slot, starting empty", "key", key, "error", err)
		}
		return []T{}
	}

	var out []T
	if err := json.Unmarshal(b, &out); err != nil {
		slog.Warn("STORAGE: Corrupt slot, starting empty", "key", key, "error", err)
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// SaveList writes items as a JSON array under key.
func SaveList[T any](ctx context.Context, store Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := store.Save(ctx, key, b); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
