// Package state holds the favorites, search history and dietary preferences of
// a session and mirrors every change to durable storage.
package state

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"recipebox"
	"recipebox/storage"
)

// MaxSearchHistory is the number of queries kept in the search history.
const MaxSearchHistory = 10

type Option func(*Container)

// WithMeter records mutation and persistence-failure counters on meter.
func WithMeter(meter metric.Meter) Option {
	return func(c *Container) {
		c.mutations, _ = meter.Int64Counter("state_mutations_total",
			metric.WithDescription("Total number of effective state mutations"))
		c.persistFailures, _ = meter.Int64Counter("state_persist_failures_total",
			metric.WithDescription("Total number of failed writes to durable storage"))
	}
}

// WithClock overrides the time source used to stamp change events.
func WithClock(now func() time.Time) Option {
	return func(c *Container) { c.now = now }
}

// Container is the single in-memory authority for a session's favorites,
// search history and dietary preferences. Durable storage is read once by Init
// and written after every effective mutation, before the mutation returns.
type Container struct {
	store storage.Store
	now   func() time.Time

	initOnce sync.Once

	mu          sync.Mutex
	favorites   []recipebox.Recipe
	history     []string
	preferences []string

	subMu       sync.Mutex
	nextSubID   int
	subscribers map[int]func(recipebox.ChangeEvent)

	mutations       metric.Int64Counter
	persistFailures metric.Int64Counter
}

func New(store storage.Store, opts ...Option) *Container {
	c := &Container{
		store:       store,
		now:         time.Now,
		favorites:   []recipebox.Recipe{},
		history:     []string{},
		preferences: []string{},
		subscribers: map[int]func(recipebox.ChangeEvent){},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init hydrates the container from storage. Only the first call reads storage.
func (c *Container) Init(ctx context.Context) {
	c.initOnce.Do(func() {
		var (
			favorites   []recipebox.Recipe
			history     []string
			preferences []string
		)
		// Slots are independent and LoadList never fails.
		var grp errgroup.Group
		grp.Go(func() error {
			favorites = storage.LoadList[recipebox.Recipe](ctx, c.store, storage.KeyFavorites)
			return nil
		})
		grp.Go(func() error {
			history = storage.LoadList[string](ctx, c.store, storage.KeySearchHistory)
			return nil
		})
		grp.Go(func() error {
			preferences = storage.LoadList[string](ctx, c.store, storage.KeyDietaryPreferences)
			return nil
		})
		_ = grp.Wait()

		c.mu.Lock()
		c.favorites, c.history, c.preferences = favorites, history, preferences
		c.mu.Unlock()

		slog.Info("STATE: Hydrated from storage",
			"favorites_count", len(favorites),
			"history_count", len(history),
			"preferences_count", len(preferences))
	})
}

// Subscribe registers fn to be called after each effective mutation. The
// returned function removes the subscription.
func (c *Container) Subscribe(fn func(recipebox.ChangeEvent)) (cancel func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subscribers, id)
	}
}

// AddFavorite appends recipe unless a favorite with the same URI exists.
func (c *Container) AddFavorite(ctx context.Context, recipe recipebox.Recipe) error {
	c.mu.Lock()
	if slices.ContainsFunc(c.favorites, recipe.Same) {
		c.mu.Unlock()
		return nil
	}
	c.favorites = append(c.favorites, recipe)
	snapshot := slices.Clone(c.favorites)
	err := persistList(ctx, c, storage.KeyFavorites, snapshot)
	c.mu.Unlock()

	c.emit(ctx, recipebox.ChangeEvent{Kind: recipebox.FavoriteAdded, Subject: recipe.URI, Favorites: snapshot})
	return err
}

// RemoveFavorite drops the favorite with the given URI. Absent URIs are ignored.
func (c *Container) RemoveFavorite(ctx context.Context, uri string) error {
	c.mu.Lock()
	i := slices.IndexFunc(c.favorites, func(r recipebox.Recipe) bool { return r.URI == uri })
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	c.favorites = slices.Delete(c.favorites, i, i+1)
	snapshot := slices.Clone(c.favorites)
	err := persistList(ctx, c, storage.KeyFavorites, snapshot)
	c.mu.Unlock()

	c.emit(ctx, recipebox.ChangeEvent{Kind: recipebox.FavoriteRemoved, Subject: uri, Favorites: snapshot})
	return err
}

func (c *Container) IsFavorite(uri string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.ContainsFunc(c.favorites, func(r recipebox.Recipe) bool { return r.URI == uri })
}

// AddToSearchHistory records a query, most recent first. Blank queries and
// queries already in the history are ignored; the oldest entry is dropped once
// the history exceeds MaxSearchHistory.
func (c *Container) AddToSearchHistory(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	c.mu.Lock()
	if slices.Contains(c.history, query) {
		c.mu.Unlock()
		return nil
	}
	history := append([]string{query}, c.history...)
	if len(history) > MaxSearchHistory {
		history = history[:MaxSearchHistory]
	}
	c.history = history
	snapshot := slices.Clone(history)
	err := persistList(ctx, c, storage.KeySearchHistory, snapshot)
	c.mu.Unlock()

	c.emit(ctx, recipebox.ChangeEvent{Kind: recipebox.SearchRecorded, Subject: query, SearchHistory: snapshot})
	return err
}

func (c *Container) ClearSearchHistory(ctx context.Context) error {
	c.mu.Lock()
	c.history = []string{}
	err := persistList(ctx, c, storage.KeySearchHistory, []string{})
	c.mu.Unlock()

	c.emit(ctx, recipebox.ChangeEvent{Kind: recipebox.SearchHistoryCleared})
	return err
}

// UpdateDietaryPreferences replaces the preferences wholesale. Duplicate
// entries collapse onto their first occurrence.
func (c *Container) UpdateDietaryPreferences(ctx context.Context, preferences []string) error {
	seen := make(map[string]bool, len(preferences))
	next := make([]string, 0, len(preferences))
	for _, p := range preferences {
		if seen[p] {
			continue
		}
		seen[p] = true
		next = append(next, p)
	}

	c.mu.Lock()
	c.preferences = next
	err := persistList(ctx, c, storage.KeyDietaryPreferences, next)
	c.mu.Unlock()

	c.emit(ctx, recipebox.ChangeEvent{Kind: recipebox.PreferencesReplaced, DietaryPreferences: slices.Clone(next)})
	return err
}

func (c *Container) Favorites() []recipebox.Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.favorites)
}

func (c *Container) SearchHistory() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

func (c *Container) DietaryPreferences() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.preferences)
}

// persistList writes one slot; c.mu must be held.
func persistList[T any](ctx context.Context, c *Container, key string, items []T) error {
	err := storage.SaveList(ctx, c.store, key, items)
	if err != nil {
		slog.Error("STATE: Failed to persist slot", "key", key, "error", err)
		if c.persistFailures != nil {
			c.persistFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("key", key)))
		}
	}
	return err
}

func (c *Container) emit(ctx context.Context, event recipebox.ChangeEvent) {
	event.ID = uuid.NewString()
	event.At = c.now()
	if c.mutations != nil {
		c.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(event.Kind))))
	}

	c.subMu.Lock()
	subs := make([]func(recipebox.ChangeEvent), 0, len(c.subscribers))
	for id := 0; id < c.nextSubID; id++ {
		if fn, ok := c.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
}
