package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	app "github.com/rocketscienceinc/tictactoe-mvc/internal"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/config"
)

// main - is the entry point of the application. It initializes the configuration, logger, and runs the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	conf := initConfig()
	logger := initLogger(conf)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initialize config.
func initConfig() *config.Config {
	return config.MustLoad(config.Locate())
}

// initialize logger. The terminal ui owns stdout, so it logs to a file or nowhere.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout

	if conf.UI == config.UITerminal {
		out = io.Discard

		if conf.Terminal.LogFile != "" {
			file, err := os.OpenFile(conf.Terminal.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				panic(fmt.Errorf("failed to open log file: %w", err))
			}

			out = file
		}
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}
