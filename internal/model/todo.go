package model

import "fmt"

// PlaceholderID is carried by a todo that has not been persisted yet.
// The remote collection never assigns it.
const PlaceholderID = 0

// Todo is the domain model for a task record of the remote collection.
type Todo struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// IsPlaceholder reports whether t is the transient stand-in shown while a
// create request is in flight.
func (t Todo) IsPlaceholder() bool { return t.ID == PlaceholderID }

// Draft is the create payload. The server assigns the id.
type Draft struct {
	Title     string `json:"title"`
	UserID    int    `json:"userId"`
	Completed bool   `json:"completed"`
}

// Placeholder returns the unpersisted todo that stands in for d.
func (d Draft) Placeholder() Todo {
	return Todo{
		ID:        PlaceholderID,
		UserID:    d.UserID,
		Title:     d.Title,
		Completed: d.Completed,
	}
}

// Filter selects which subset of todos is displayed.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists every view mode in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter maps user input onto a Filter. The empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive, FilterCompleted:
		return Filter(s), nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, active or completed)", s)
}

// Label is the title-cased name used by the filter selectors.
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// Match reports whether t belongs to the projection selected by f.
func (f Filter) Match(t Todo) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Apply returns the todos matched by f, preserving their order.
func (f Filter) Apply(todos []Todo) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Next cycles through Filters; step may be negative.
func (f Filter) Next(step int) Filter {
	idx := 0
	for i, v := range Filters {
		if v == f {
			idx = i
			break
		}
	}
	n := len(Filters)
	return Filters[((idx+step)%n+n)%n]
}

// Completed returns the completed todos in collection order.
func Completed(todos []Todo) []Todo { return FilterCompleted.Apply(todos) }

// CountActive counts todos that are not completed.
func CountActive(todos []Todo) int {
	n := 0
	for _, t := range todos {
		if !t.Completed {
			n++
		}
	}
	return n
}

// IDs extracts the ids of todos in order.
func IDs(todos []Todo) []int {
	ids := make([]int, 0, len(todos))
	for _, t := range todos {
		ids = append(ids, t.ID)
	}
	return ids
}
