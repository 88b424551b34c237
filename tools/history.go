package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"recipebox/state"
)

func historySchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"history": stringArraySchema(),
	}, "history")
}

type HistoryList struct {
	state *state.Container
}

func NewHistoryList(st *state.Container) *HistoryList { return &HistoryList{state: st} }

func (t *HistoryList) Name() string  { return "history_list" }
func (t *HistoryList) Title() string { return "Search History" }
func (t *HistoryList) Description() string {
	return "Lists the last 10 distinct search queries, most recent first."
}
func (t *HistoryList) InputSchema() *jsonschema.Schema  { return objectSchema(nil) }
func (t *HistoryList) OutputSchema() *jsonschema.Schema { return historySchema() }

func (t *HistoryList) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	return toMap(map[string]any{"history": t.state.SearchHistory()})
}

type HistoryClear struct {
	state *state.Container
}

func NewHistoryClear(st *state.Container) *HistoryClear { return &HistoryClear{state: st} }

func (t *HistoryClear) Name() string                     { return "history_clear" }
func (t *HistoryClear) Title() string                    { return "Clear Search History" }
func (t *HistoryClear) Description() string              { return "Forgets all recorded search queries." }
func (t *HistoryClear) InputSchema() *jsonschema.Schema  { return objectSchema(nil) }
func (t *HistoryClear) OutputSchema() *jsonschema.Schema { return historySchema() }

func (t *HistoryClear) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := t.state.ClearSearchHistory(ctx); err != nil {
		return nil, err
	}
	return toMap(map[string]any{"history": t.state.SearchHistory()})
}
