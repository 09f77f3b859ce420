package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/rivo/tview"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/config"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/game"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/scoreboard"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/telemetry"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/view/terminal"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	shutdown, err := telemetry.Setup(ctx, conf.Telemetry.Endpoint, conf.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("could not set up telemetry: %w", err)
	}

	defer func() {
		if err = shutdown(context.Background()); err != nil {
			log.Error("could not flush telemetry", "error", err)
		}
	}()

	switch conf.UI {
	case config.UITerminal:
		return runTerminal(ctx, logger, conf)
	case config.UIWeb:
		return runWeb(ctx, logger, conf)
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownUIMode, conf.UI)
	}
}

// runTerminal plays a single local game in the terminal until the user quits.
func runTerminal(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	engine, err := game.New(conf.Size())
	if err != nil {
		return fmt.Errorf("could not create game: %w", err)
	}

	tag, err := language.Parse(conf.Terminal.Locale)
	if err != nil {
		log.Warn("unknown locale, falling back to english", "locale", conf.Terminal.Locale, "error", err)
		tag = language.English
	}

	view := terminal.New(logger, tview.NewApplication(), conf.Size(), symbols(conf.Terminal), message.NewPrinter(tag))

	controller, err := tictactoe.NewGameController(logger, engine, view)
	if err != nil {
		return fmt.Errorf("could not create game controller: %w", err)
	}

	tracker := scoreboard.NewTracker(controller, time.Now)
	controller.Use(tracker.Middleware())

	view.SetControls(terminal.Controls{
		NewGame:     tracker.HandleNewGame,
		ResetScores: tracker.ResetScores,
		Scoreboard:  tracker,
	})

	controller.InitGame()

	log.Info("Starting terminal game", "size", conf.Size())

	if err = view.Run(ctx, conf.Terminal.Refresh); err != nil {
		return fmt.Errorf("terminal ui error: %w", err)
	}

	return nil
}

// runWeb serves a game per websocket connection.
func runWeb(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	server := websocket.New(logger, websocket.Options{
		BoardSize:      conf.Size(),
		OriginPatterns: conf.OriginPatterns,
	})

	log.Info("Starting HTTP server", "port", conf.HTTPPort)

	if err := server.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

func symbols(conf config.Terminal) terminal.Symbols {
	return terminal.Symbols{
		X:      firstRune(conf.SymbolX, 'X'),
		O:      firstRune(conf.SymbolO, 'O'),
		Empty:  firstRune(conf.Empty, '.'),
		Cursor: firstRune(conf.Cursor, '_'),
	}
}

func firstRune(value string, fallback rune) rune {
	r, _ := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError {
		return fallback
	}

	return r
}
