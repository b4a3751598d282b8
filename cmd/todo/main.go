package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/idilsaglam/todos/internal/cli"
	"github.com/idilsaglam/todos/internal/config"
	"github.com/idilsaglam/todos/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	configPath := flag.String("config", "", "TOML config file")
	envFile := flag.String("env-file", ".env", "dotenv file read before TODOS_* overrides")
	apiURL := flag.String("api", "", "collection base URL")
	userID := flag.Int("user", 0, "owner of the collection")
	theme := flag.String("theme", "", "classic, neon or mono")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	logFile := flag.String("log-file", "", "write logs to this file")
	noColor := flag.Bool("no-color", false, "disable colors")
	flag.Usage = func() { cli.PrintHelp(flag.CommandLine.Output()) }
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(2)
	}

	// Explicit flags win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			cfg.APIURL = *apiURL
		case "user":
			cfg.UserID = *userID
		case "theme":
			cfg.Theme = *theme
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-file":
			cfg.LogFile = *logFile
		}
	})
	if err := cfg.Validate(); err != nil {
		ui.Fail(os.Stderr, "config: "+err.Error())
		os.Exit(2)
	}

	ui.SetTheme(cfg.Theme)
	if *noColor {
		ui.SetColorForcing(false, true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(flag.Args(), cli.Options{
		Context: ctx,
		Config:  cfg,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	})
	stop()
	os.Exit(code)
}
