// Package cli dispatches the todo subcommands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/idilsaglam/todos/internal/api"
	"github.com/idilsaglam/todos/internal/config"
	"github.com/idilsaglam/todos/internal/controller"
	"github.com/idilsaglam/todos/internal/fakeapi"
	"github.com/idilsaglam/todos/internal/logging"
	"github.com/idilsaglam/todos/internal/model"
	"github.com/idilsaglam/todos/internal/store/jsonstore"
	"github.com/idilsaglam/todos/internal/ui"
)

// Options carries what the entry point resolved before dispatch.
type Options struct {
	Context context.Context
	Config  *config.Config
	Stdout  io.Writer
	Stderr  io.Writer
}

func (o *Options) defaults() {
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.Config == nil {
		o.Config = config.Defaults()
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	opt.defaults()
	if len(args) == 0 {
		return doTUI(opt)
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0

	case "tui":
		return doTUI(opt)

	case "ls":
		if len(a) > 1 {
			ui.Fail(opt.Stderr, "usage: todo ls [all|active|completed]")
			return 2
		}
		f := model.FilterAll
		if len(a) == 1 {
			var err error
			if f, err = model.ParseFilter(a[0]); err != nil {
				ui.Fail(opt.Stderr, "ls: "+err.Error())
				return 2
			}
		}
		return doList(opt, f)

	case "add":
		if len(a) == 0 {
			ui.Fail(opt.Stderr, "usage: todo add <title...>")
			return 2
		}
		return doAdd(opt, strings.Join(a, " "))

	case "rm":
		if len(a) != 1 {
			ui.Fail(opt.Stderr, "usage: todo rm <id>")
			return 2
		}
		id, err := strconv.Atoi(a[0])
		if err != nil || id <= 0 {
			ui.Fail(opt.Stderr, "rm: not a todo id: "+a[0])
			return 2
		}
		return doRemove(opt, id)

	case "clear":
		return doClear(opt)

	case "serve":
		return doServe(opt, a)
	}

	ui.Fail(opt.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Stderr)
	PrintHelp(opt.Stderr)
	return 2
}

// PrintHelp writes usage text.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a todo list client for a remote collection

Usage:
  todo [flags] [subcommand] [args]

Subcommands:
  tui                          Interactive list (default)
  ls [all|active|completed]    Print the list
  add <title...>               Create a todo (title can be multiple words)
  rm <id>                      Delete the todo with that id
  clear                        Delete every completed todo
  serve [--addr] [--data]      Run a local collection server

Flags:
  --config <file>   TOML config (default ./todos.toml when present)
  --api <url>       Collection base URL
  --user <id>       Owner of the collection
  --theme <name>    classic, neon or mono
  --log-level <l>   debug, info, warn or error

Examples:
  todo --user 2129 add "Buy milk"
  todo ls active
  todo rm 3
  todo serve --addr :8080 --data todos.json
`)
}

// -------------- subcommand impls ----------------

func doTUI(opt Options) int {
	cfg := opt.Config
	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Path:   cfg.LogFile,
	})
	if err != nil {
		ui.Fail(opt.Stderr, "log: "+err.Error())
		return 1
	}
	defer closer.Close()

	ctl, err := newController(opt, logger, cfg.ErrorTimeoutDuration())
	if err != nil {
		ui.Fail(opt.Stderr, err.Error())
		return 1
	}
	if err := ui.Run(opt.Context, ctl); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		ui.Fail(opt.Stderr, "tui: "+err.Error())
		return 1
	}
	return 0
}

func doList(opt Options, f model.Filter) int {
	ctl, code := loaded(opt)
	if ctl == nil {
		return code
	}
	ctl.SetFilter(f)

	all := ctl.Todos()
	active := ctl.ActiveCount()
	done := len(all) - active
	t := ui.Current()

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Todos"),
		ui.C(t.Success, t.SymDone), done,
		ui.C(t.Pending, t.SymActive), active,
		ui.C(t.Accent, "Total"), len(all),
	)
	lines := []string{
		header,
		ui.C(t.Muted, ui.ProgressBar(done, len(all), 28)),
		"",
	}
	lines = append(lines, todoLines(ctl.FilteredTodos())...)
	lines = append(lines, "")
	if ctl.FooterVisible() {
		lines = append(lines, fmt.Sprintf("%d items left  %s", active, filterTabs(f)))
	}
	lines = append(lines, ui.C(t.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(opt.Stdout, lines)
	return 0
}

func doAdd(opt Options, title string) int {
	ctl, code := unloaded(opt)
	if ctl == nil {
		return code
	}
	cmd := ctl.SubmitNewTodo(title)
	if cmd == nil {
		ui.Fail(opt.Stderr, "add: "+ctl.ErrorMessage())
		return 2
	}
	settle(ctl, cmd)
	if msg := ctl.ErrorMessage(); msg != "" {
		ui.Fail(opt.Stderr, msg)
		return 1
	}
	todos := ctl.Todos()
	created := todos[len(todos)-1]
	ui.OK(opt.Stdout, fmt.Sprintf("added #%d %s", created.ID, created.Title))
	return 0
}

func doRemove(opt Options, id int) int {
	ctl, code := unloaded(opt)
	if ctl == nil {
		return code
	}
	settle(ctl, ctl.DeleteOne(id))
	if msg := ctl.ErrorMessage(); msg != "" {
		ui.Fail(opt.Stderr, msg)
		ui.Hint(opt.Stderr, "Hint: run `todo ls` to see valid ids")
		return 1
	}
	ui.OK(opt.Stdout, fmt.Sprintf("removed #%d", id))
	return 0
}

func doClear(opt Options) int {
	ctl, code := loaded(opt)
	if ctl == nil {
		return code
	}
	targeted := len(ctl.CompletedTodos())
	if targeted == 0 {
		ui.OK(opt.Stdout, "nothing to clear")
		return 0
	}

	settle(ctl, ctl.DeleteCompleted())
	kept := ctl.CompletedTodos()
	if msg := ctl.ErrorMessage(); msg != "" {
		ids := make([]string, 0, len(kept))
		for _, t := range kept {
			ids = append(ids, "#"+strconv.Itoa(t.ID))
		}
		ui.Fail(opt.Stderr, fmt.Sprintf("%s: cleared %d, kept %s", msg, targeted-len(kept), strings.Join(ids, " ")))
		return 1
	}
	ui.OK(opt.Stdout, fmt.Sprintf("cleared %d completed", targeted))
	return 0
}

func doServe(opt Options, args []string) int {
	cfg := opt.Config
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(opt.Stderr)
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	data := fs.String("data", cfg.Server.DataFile, "persist the collection to this JSON file")
	latency := fs.Duration("latency", cfg.Server.LatencyDuration(), "delay every response")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger, closer, err := logging.New(logging.Options{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		Path:     cfg.LogFile,
		Fallback: opt.Stderr,
		Prefix:   "todos serve",
	})
	if err != nil {
		ui.Fail(opt.Stderr, "log: "+err.Error())
		return 1
	}
	defer closer.Close()

	srvOpts := []fakeapi.Option{
		fakeapi.WithLogger(logger),
		fakeapi.WithAllowOrigins(cfg.Server.AllowOrigins...),
		fakeapi.WithLatency(*latency),
	}
	if *data != "" {
		st, err := jsonstore.New(*data)
		if err != nil {
			ui.Fail(opt.Stderr, "serve: "+err.Error())
			return 1
		}
		srvOpts = append(srvOpts, fakeapi.WithStore(st))
		logger.Info("persisting collection", "path", st.Path())
	}
	srv, err := fakeapi.New(srvOpts...)
	if err != nil {
		ui.Fail(opt.Stderr, "serve: "+err.Error())
		return 1
	}

	gin.SetMode(gin.ReleaseMode)
	ui.OK(opt.Stdout, "serving todos on http://"+*addr)
	if err := srv.ListenAndServe(opt.Context, *addr); err != nil {
		ui.Fail(opt.Stderr, "serve: "+err.Error())
		return 1
	}
	return 0
}

// -------------- helpers --------------

// newController wires the HTTP client and the controller from config.
func newController(opt Options, logger *log.Logger, errorTimeout time.Duration) (*controller.Controller, error) {
	cfg := opt.Config
	client, err := api.New(cfg.APIURL,
		api.WithTimeout(cfg.RequestTimeoutDuration()),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return controller.New(opt.Context, client, cfg.UserID,
		controller.WithLogger(logger),
		controller.WithErrorTimeout(errorTimeout),
	), nil
}

// unloaded builds a controller for one-shot commands. A nil controller
// comes with the exit code to return.
func unloaded(opt Options) (*controller.Controller, int) {
	if !opt.Config.Configured() {
		ui.Fail(opt.Stderr, "no user id configured")
		ui.Hint(opt.Stderr, "Hint: pass --user <id> or set TODOS_USER_ID")
		return nil, 2
	}
	logger, _, err := logging.New(logging.Options{
		Level:    opt.Config.LogLevel,
		Format:   opt.Config.LogFormat,
		Fallback: opt.Stderr,
	})
	if err != nil {
		ui.Fail(opt.Stderr, "log: "+err.Error())
		return nil, 1
	}
	ctl, err := newController(opt, logger, 0)
	if err != nil {
		ui.Fail(opt.Stderr, err.Error())
		return nil, 1
	}
	return ctl, 0
}

// loaded is unloaded plus the initial fetch.
func loaded(opt Options) (*controller.Controller, int) {
	ctl, code := unloaded(opt)
	if ctl == nil {
		return nil, code
	}
	settle(ctl, ctl.Init())
	if msg := ctl.ErrorMessage(); msg != "" {
		ui.Fail(opt.Stderr, msg)
		return nil, 1
	}
	return ctl, 0
}

// settle runs cmd synchronously and feeds its message back.
func settle(ctl *controller.Controller, cmd tea.Cmd) {
	for cmd != nil {
		cmd = ctl.Update(cmd())
	}
}

func todoLines(todos []model.Todo) []string {
	t := ui.Current()
	if len(todos) == 0 {
		return []string{ui.C(t.Muted, "(nothing here)")}
	}
	lines := make([]string, 0, len(todos))
	for _, td := range todos {
		box, title := t.BoxUnchecked, td.Title
		if td.Completed {
			box = ui.C(t.Success, t.BoxChecked)
			title = ui.C(t.Muted, title)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", ui.C(t.Muted, fmt.Sprintf("#%-4d", td.ID)), box, title))
	}
	return lines
}

func filterTabs(selected model.Filter) string {
	t := ui.Current()
	tabs := make([]string, 0, len(model.Filters))
	for _, f := range model.Filters {
		if f == selected {
			tabs = append(tabs, ui.C(t.Accent, "["+f.Label()+"]"))
			continue
		}
		tabs = append(tabs, ui.C(t.Muted, f.Label()))
	}
	return strings.Join(tabs, " ")
}
