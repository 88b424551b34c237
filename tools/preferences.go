package tools

import (
	"context"
	"fmt"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"recipebox"
	"recipebox/state"
)

type preferencesOutput struct {
	Preferences []string                  `json:"preferences"`
	Available   []recipebox.DietaryFilter `json:"available"`
}

func preferencesResult(st *state.Container) (map[string]any, error) {
	return toMap(preferencesOutput{Preferences: st.DietaryPreferences(), Available: recipebox.DietaryFilters})
}

func preferencesSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"preferences": stringArraySchema(),
		"available": {
			Type: "array",
			Items: objectSchema(map[string]*jsonschema.Schema{
				"id":     {Type: "string"},
				"label":  {Type: "string"},
				"health": {Type: "string"},
			}, "id", "label", "health"),
		},
	}, "preferences", "available")
}

type PreferencesGet struct {
	state *state.Container
}

func NewPreferencesGet(st *state.Container) *PreferencesGet { return &PreferencesGet{state: st} }

func (t *PreferencesGet) Name() string                     { return "preferences_get" }
func (t *PreferencesGet) Title() string                    { return "Get Dietary Preferences" }
func (t *PreferencesGet) Description() string              { return "Lists the saved dietary preferences and the filters available." }
func (t *PreferencesGet) InputSchema() *jsonschema.Schema  { return objectSchema(nil) }
func (t *PreferencesGet) OutputSchema() *jsonschema.Schema { return preferencesSchema() }

func (t *PreferencesGet) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	return preferencesResult(t.state)
}

type PreferencesSet struct {
	state *state.Container
}

func NewPreferencesSet(st *state.Container) *PreferencesSet { return &PreferencesSet{state: st} }

func (t *PreferencesSet) Name() string  { return "preferences_set" }
func (t *PreferencesSet) Title() string { return "Set Dietary Preferences" }
func (t *PreferencesSet) Description() string {
	return "Replaces the saved dietary preferences with the given list of health labels."
}

func (t *PreferencesSet) InputSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"preferences": stringArraySchema(),
	}, "preferences")
}

func (t *PreferencesSet) OutputSchema() *jsonschema.Schema { return preferencesSchema() }

func (t *PreferencesSet) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	prefs, err := stringsArg(input, "preferences")
	if err != nil {
		return nil, err
	}
	if err := t.state.UpdateDietaryPreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return preferencesResult(t.state)
}

type PreferenceToggle struct {
	state *state.Container
}

func NewPreferenceToggle(st *state.Container) *PreferenceToggle { return &PreferenceToggle{state: st} }

func (t *PreferenceToggle) Name() string  { return "preference_toggle" }
func (t *PreferenceToggle) Title() string { return "Toggle Dietary Preference" }
func (t *PreferenceToggle) Description() string {
	return "Selects a known dietary filter when it is off and deselects it when it is on."
}

func (t *PreferenceToggle) InputSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"preference": {Type: "string"},
	}, "preference")
}

func (t *PreferenceToggle) OutputSchema() *jsonschema.Schema { return preferencesSchema() }

func (t *PreferenceToggle) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	pref := stringArg(input, "preference")
	filter, ok := recipebox.LookupDietaryFilter(pref)
	if !ok {
		return nil, fmt.Errorf("preference_toggle: unknown dietary filter %q", pref)
	}

	current := t.state.DietaryPreferences()
	var next []string
	if i := slices.Index(current, filter.Health); i >= 0 {
		next = slices.Delete(current, i, i+1)
	} else {
		next = append(current, filter.Health)
	}

	if err := t.state.UpdateDietaryPreferences(ctx, next); err != nil {
		return nil, err
	}
	return preferencesResult(t.state)
}
