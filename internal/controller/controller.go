// Package controller owns the todo list state and keeps it in step with the
// remote collection.
//
// Every operation mutates state immediately and returns a tea.Cmd that
// performs the remote call. The command's result comes back through Update
// as a settle message. Bubble Tea runs Update on one goroutine, so state is
// never touched concurrently.
package controller

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todos/internal/api"
	"github.com/idilsaglam/todos/internal/logging"
	"github.com/idilsaglam/todos/internal/model"
)

// User-visible error messages.
const (
	MsgLoadFailed   = "Unable to load todos"
	MsgEmptyTitle   = "Title should not be empty"
	MsgAddFailed    = "Unable to add a todo"
	MsgDeleteFailed = "Unable to delete a todo"
)

// DefaultErrorTimeout is how long an error stays visible.
const DefaultErrorTimeout = 3 * time.Second

// Controller is the todo list state machine.
type Controller struct {
	ctx          context.Context
	client       api.Collection
	userID       int
	logger       *log.Logger
	errorTimeout time.Duration

	todos        []model.Todo
	filter       model.Filter
	errorMessage string
	errGen       int
	loadingID    int // model.PlaceholderID when no single delete is running
	newTitle     string
	temp         *model.Todo
	adding       bool
	initialized  bool
	focus        bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for remote failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorTimeout sets the auto-dismiss delay. Zero keeps errors until
// they are replaced or dismissed.
func WithErrorTimeout(d time.Duration) Option {
	return func(c *Controller) { c.errorTimeout = d }
}

// New creates a controller for the collection owned by userID.
func New(ctx context.Context, client api.Collection, userID int, opts ...Option) *Controller {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &Controller{
		ctx:          ctx,
		client:       client,
		userID:       userID,
		logger:       logging.Discard(),
		errorTimeout: DefaultErrorTimeout,
		filter:       model.FilterAll,
		loadingID:    model.PlaceholderID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type (
	loadedMsg struct {
		todos []model.Todo
		err   error
	}
	createdMsg struct {
		todo model.Todo
		err  error
	}
	deletedMsg struct {
		id  int
		err error
	}
	batchDeletedMsg struct {
		targeted []int
		failed   []int
		causes   error // per-id call errors, joined
		err      error // the batch itself broke; no outcome is trusted
	}
	dismissErrorMsg struct {
		gen int
	}
)

// Configured reports whether a usable user id is set. An unconfigured
// controller never talks to the collection.
func (c *Controller) Configured() bool { return c.userID > 0 }

// Init requests the collection. It does so at most once.
func (c *Controller) Init() tea.Cmd {
	if !c.Configured() || c.initialized {
		return nil
	}
	c.initialized = true
	ctx, client, userID := c.ctx, c.client, c.userID
	return func() tea.Msg {
		todos, err := client.List(ctx, userID)
		return loadedMsg{todos: todos, err: err}
	}
}

// SetFilter switches the visible projection.
func (c *Controller) SetFilter(f model.Filter) {
	switch f {
	case model.FilterActive, model.FilterCompleted:
		c.filter = f
	default:
		c.filter = model.FilterAll
	}
}

// SetNewTodoTitle tracks the text of the creation input.
func (c *Controller) SetNewTodoTitle(s string) { c.newTitle = s }

// SubmitNewTodo validates rawTitle, shows the placeholder and issues the
// create call. It is ignored while another create is in flight.
func (c *Controller) SubmitNewTodo(rawTitle string) tea.Cmd {
	if c.adding {
		return nil
	}
	c.newTitle = rawTitle
	title := strings.TrimSpace(rawTitle)
	if title == "" {
		return c.setError(MsgEmptyTitle)
	}

	draft := model.Draft{Title: title, UserID: c.userID}
	temp := draft.Placeholder()
	c.temp = &temp
	c.adding = true

	ctx, client := c.ctx, c.client
	return func() tea.Msg {
		todo, err := client.Create(ctx, draft)
		return createdMsg{todo: todo, err: err}
	}
}

// DeleteOne marks id as loading and issues its delete call. It is
// ignored for the placeholder and for an id whose delete is in flight.
func (c *Controller) DeleteOne(id int) tea.Cmd {
	if id == model.PlaceholderID || c.IsLoading(id) {
		return nil
	}
	c.loadingID = id

	ctx, client := c.ctx, c.client
	return func() tea.Msg {
		return deletedMsg{id: id, err: client.Delete(ctx, id)}
	}
}

// DeleteCompleted deletes every completed todo concurrently. Failed
// deletions keep their todo.
func (c *Controller) DeleteCompleted() tea.Cmd {
	ids := model.IDs(model.Completed(c.todos))
	if len(ids) == 0 {
		c.focus = true
		return nil
	}
	ctx, client := c.ctx, c.client
	return func() tea.Msg {
		return deleteAll(ctx, client, ids)
	}
}

// DismissError hides the current error and disarms its timer.
func (c *Controller) DismissError() {
	if c.errorMessage == "" {
		return
	}
	c.errorMessage = ""
	c.errGen++
}

// Update applies a settle message. Messages it does not own are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			c.logger.Error("load todos", "user", c.userID, "err", msg.err)
			return c.setError(MsgLoadFailed)
		}
		c.todos = append([]model.Todo(nil), msg.todos...)
		c.logger.Debug("loaded todos", "count", len(c.todos))

	case createdMsg:
		c.temp = nil
		c.adding = false
		c.focus = true
		if msg.err != nil {
			c.logger.Error("create todo", "err", msg.err)
			return c.setError(MsgAddFailed)
		}
		c.todos = append(c.todos, msg.todo)
		c.newTitle = ""
		c.logger.Debug("created todo", "id", msg.todo.ID)

	case deletedMsg:
		c.loadingID = model.PlaceholderID
		c.focus = true
		if msg.err != nil {
			c.logger.Error("delete todo", "id", msg.id, "err", msg.err)
			return c.setError(MsgDeleteFailed)
		}
		c.todos = removeIDs(c.todos, map[int]bool{msg.id: true})
		c.logger.Debug("deleted todo", "id", msg.id)

	case batchDeletedMsg:
		c.focus = true
		if msg.err != nil {
			c.logger.Error("delete completed", "ids", msg.targeted, "err", msg.err)
			return c.setError(MsgDeleteFailed)
		}
		failed := make(map[int]bool, len(msg.failed))
		for _, id := range msg.failed {
			failed[id] = true
		}
		succeeded := make(map[int]bool, len(msg.targeted))
		for _, id := range msg.targeted {
			if !failed[id] {
				succeeded[id] = true
			}
		}
		c.todos = removeIDs(c.todos, succeeded)
		c.logger.Debug("deleted completed", "removed", len(succeeded), "failed", len(msg.failed))
		if len(msg.failed) > 0 {
			c.logger.Error("delete completed", "failed", msg.failed, "err", msg.causes)
			return c.setError(MsgDeleteFailed)
		}

	case dismissErrorMsg:
		if msg.gen == c.errGen {
			c.errorMessage = ""
		}
	}
	return nil
}

// setError shows text and arms a dismiss timer that supersedes any
// earlier one.
func (c *Controller) setError(text string) tea.Cmd {
	c.errorMessage = text
	c.errGen++
	if c.errorTimeout <= 0 {
		return nil
	}
	gen := c.errGen
	return tea.Tick(c.errorTimeout, func(time.Time) tea.Msg {
		return dismissErrorMsg{gen: gen}
	})
}

// TakeFocus reports, once, that an operation finished and the creation
// input should get focus back.
func (c *Controller) TakeFocus() bool {
	f := c.focus
	c.focus = false
	return f
}

func removeIDs(todos []model.Todo, ids map[int]bool) []model.Todo {
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if !ids[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
