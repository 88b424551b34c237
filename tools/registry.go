package tools

import (
	"fmt"
	"sort"

	"recipebox/source"
	"recipebox/state"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

type RegistryOption func(*Registry, *state.Container, source.Source)

// WithSharer registers recipe_share, posting to channel unless the call names one.
func WithSharer(sharer Sharer, channel string) RegistryOption {
	return func(r *Registry, st *state.Container, src source.Source) {
		(*r)["recipe_share"] = NewRecipeShare(src, sharer, channel)
	}
}

// NewRegistry creates a registry of all operations over the given state and source.
func NewRegistry(st *state.Container, src source.Source, opts ...RegistryOption) (*Registry, error) {
	if st == nil || src == nil {
		return nil, fmt.Errorf("registry needs both a state container and a recipe source")
	}

	tools := []Tool{
		NewRecipeSearch(st, src),
		NewRecipeGet(st, src),
		NewRecipeTrending(src),
		NewFavoriteAdd(st, src),
		NewFavoriteRemove(st),
		NewFavoriteToggle(st, src),
		NewFavoritesList(st),
		NewHistoryList(st),
		NewHistoryClear(st),
		NewPreferencesGet(st),
		NewPreferencesSet(st),
		NewPreferenceToggle(st),
	}

	registry := Registry{}
	for _, t := range tools {
		registry[t.Name()] = t
	}
	for _, opt := range opts {
		opt(&registry, st, src)
	}
	return &registry, nil
}

// GetTools returns all tools in the registry sorted by name
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}
