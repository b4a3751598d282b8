package controller

import "github.com/idilsaglam/todos/internal/model"

// Todos returns a copy of the persisted collection in order.
func (c *Controller) Todos() []model.Todo {
	return append([]model.Todo(nil), c.todos...)
}

// Filter is the current view mode.
func (c *Controller) Filter() model.Filter { return c.filter }

// ErrorMessage is the visible error, or "".
func (c *Controller) ErrorMessage() string { return c.errorMessage }

// LoadingID is the id being deleted individually, if any.
func (c *Controller) LoadingID() (int, bool) {
	return c.loadingID, c.loadingID != model.PlaceholderID
}

// IsLoading reports whether the todo with id shows the loading overlay.
func (c *Controller) IsLoading(id int) bool {
	return id != model.PlaceholderID && id == c.loadingID
}

// NewTodoTitle is the text of the creation input.
func (c *Controller) NewTodoTitle() string { return c.newTitle }

// TempTodo is the placeholder shown while a create is in flight.
func (c *Controller) TempTodo() (model.Todo, bool) {
	if c.temp == nil {
		return model.Todo{}, false
	}
	return *c.temp, true
}

// IsAdding reports whether a create request is in flight.
func (c *Controller) IsAdding() bool { return c.adding }

// ActiveCount counts todos that are not completed.
func (c *Controller) ActiveCount() int { return model.CountActive(c.todos) }

// CompletedTodos returns the completed todos.
func (c *Controller) CompletedTodos() []model.Todo { return model.Completed(c.todos) }

// FilteredTodos is the projection selected by the current filter.
func (c *Controller) FilteredTodos() []model.Todo { return c.filter.Apply(c.todos) }

// FooterVisible is false whenever the collection is empty.
func (c *Controller) FooterVisible() bool { return len(c.todos) > 0 }

// CanClearCompleted reports whether there is anything to clear.
func (c *Controller) CanClearCompleted() bool {
	for _, t := range c.todos {
		if t.Completed {
			return true
		}
	}
	return false
}
