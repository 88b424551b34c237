package recipebox

import (
	"net/http"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Recipe is one dish as returned by the recipe source. Field names follow the
// Edamam v2 wire format so API responses and fixtures decode the same way.
type Recipe struct {
	URI             string       `json:"uri"`
	Label           string       `json:"label"`
	Image           string       `json:"image"`
	Source          string       `json:"source"`
	URL             string       `json:"url"`
	Yield           float64      `json:"yield"`
	DietLabels      []string     `json:"dietLabels"`
	HealthLabels    []string     `json:"healthLabels"`
	Cautions        []string     `json:"cautions"`
	IngredientLines []string     `json:"ingredientLines"`
	Ingredients     []Ingredient `json:"ingredients"`
	Calories        float64      `json:"calories"`
	TotalWeight     float64      `json:"totalWeight"`
	TotalTime       float64      `json:"totalTime"`
	CuisineType     []string     `json:"cuisineType"`
	MealType        []string     `json:"mealType"`
	DishType        []string     `json:"dishType"`
}

// Same reports whether r and other describe the same recipe.
func (r Recipe) Same(other Recipe) bool {
	return r.URI == other.URI
}

// HasHealthLabel reports exact, case-sensitive membership in HealthLabels.
func (r Recipe) HasHealthLabel(label string) bool {
	for _, l := range r.HealthLabels {
		if l == label {
			return true
		}
	}
	return false
}

type Ingredient struct {
	Text         string  `json:"text"`
	Quantity     float64 `json:"quantity"`
	Measure      string  `json:"measure"`
	Food         string  `json:"food"`
	Weight       float64 `json:"weight"`
	FoodCategory string  `json:"foodCategory"`
	FoodID       string  `json:"foodId"`
	Image        string  `json:"image,omitempty"`
}

type Link struct {
	Href string `json:"href"`
}

type PageLinks struct {
	Next *Link `json:"next,omitempty"`
}

type HitLinks struct {
	Self *Link `json:"self,omitempty"`
}

// Hit wraps one recipe of a search result with its self link.
type Hit struct {
	Recipe Recipe   `json:"recipe"`
	Links  HitLinks `json:"_links"`
}

// SearchResult is the paginated envelope returned by a recipe source. Hit
// order is determined by the source and must be preserved.
type SearchResult struct {
	From  int       `json:"from"`
	To    int       `json:"to"`
	Count int       `json:"count"`
	Links PageLinks `json:"_links"`
	Hits  []Hit     `json:"hits"`
}

// Recipes returns the recipes of all hits, in order.
func (sr SearchResult) Recipes() []Recipe {
	out := make([]Recipe, 0, len(sr.Hits))
	for _, h := range sr.Hits {
		out = append(out, h.Recipe)
	}
	return out
}

// ChangeKind names the state mutation that produced a ChangeEvent.
type ChangeKind string

const (
	FavoriteAdded        ChangeKind = "favorite_added"
	FavoriteRemoved      ChangeKind = "favorite_removed"
	SearchRecorded       ChangeKind = "search_recorded"
	SearchHistoryCleared ChangeKind = "search_history_cleared"
	PreferencesReplaced  ChangeKind = "preferences_replaced"
)

// ChangeEvent is emitted after every effective state mutation. Only the slot
// touched by the mutation is populated.
type ChangeEvent struct {
	ID                 string     `json:"id"`
	Kind               ChangeKind `json:"kind"`
	At                 time.Time  `json:"at"`
	Subject            string     `json:"subject,omitempty"`
	Favorites          []Recipe   `json:"favorites,omitempty"`
	SearchHistory      []string   `json:"search_history,omitempty"`
	DietaryPreferences []string   `json:"dietary_preferences,omitempty"`
}

// DietaryFilter is a selectable dietary preference and the health label it filters on.
type DietaryFilter struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Health string `json:"health"`
}

var DietaryFilters = []DietaryFilter{
	{ID: "vegetarian", Label: "Vegetarian", Health: "vegetarian"},
	{ID: "vegan", Label: "Vegan", Health: "vegan"},
	{ID: "gluten-free", Label: "Gluten-Free", Health: "gluten-free"},
	{ID: "dairy-free", Label: "Dairy-Free", Health: "dairy-free"},
	{ID: "low-sugar", Label: "Low Sugar", Health: "low-sugar"},
}

// LookupDietaryFilter finds a known filter by its health label.
func LookupDietaryFilter(health string) (DietaryFilter, bool) {
	for _, f := range DietaryFilters {
		if f.Health == health {
			return f, true
		}
	}
	return DietaryFilter{}, false
}
