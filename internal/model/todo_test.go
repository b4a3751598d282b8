package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTodos() []Todo {
	return []Todo{
		{ID: 1, UserID: 7, Title: "Write tests", Completed: false},
		{ID: 2, UserID: 7, Title: "Ship feature", Completed: true},
		{ID: 3, UserID: 7, Title: "Update docs", Completed: false},
		{ID: 4, UserID: 7, Title: "Tag release", Completed: true},
	}
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		filter Filter
		want   []int
	}{
		{FilterAll, []int{1, 2, 3, 4}},
		{FilterActive, []int{1, 3}},
		{FilterCompleted, []int{2, 4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			assert.Equal(t, tt.want, IDs(tt.filter.Apply(sampleTodos())))
		})
	}
}

func TestFilterApply_EmptyCollection(t *testing.T) {
	for _, f := range Filters {
		assert.Empty(t, f.Apply(nil), "filter %s", f)
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter("completed")
	require.NoError(t, err)
	assert.Equal(t, FilterCompleted, f)

	_, err = ParseFilter("done")
	assert.Error(t, err)
}

func TestFilterNext(t *testing.T) {
	assert.Equal(t, FilterActive, FilterAll.Next(1))
	assert.Equal(t, FilterAll, FilterCompleted.Next(1))
	assert.Equal(t, FilterCompleted, FilterAll.Next(-1))
}

func TestCountsAndProjections(t *testing.T) {
	todos := sampleTodos()
	assert.Equal(t, 2, CountActive(todos))
	assert.Equal(t, []int{2, 4}, IDs(Completed(todos)))
}

func TestDraftPlaceholder(t *testing.T) {
	p := Draft{Title: "Buy milk", UserID: 7}.Placeholder()
	assert.True(t, p.IsPlaceholder())
	assert.Equal(t, PlaceholderID, p.ID)
	assert.Equal(t, "Buy milk", p.Title)
	assert.Equal(t, 7, p.UserID)
	assert.False(t, p.Completed)
}
