package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	ws "nhooyr.io/websocket"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/scoreboard"
)

const (
	tracerName      = "github.com/rocketscienceinc/tictactoe-mvc/internal/transport/websocket"
	shutdownTimeout = 5 * time.Second
)

type Options struct {
	// BoardSize of every game started by the server.
	BoardSize int
	// OriginPatterns allowed to open a websocket besides the server's own host.
	OriginPatterns []string
	Clock          scoreboard.Clock
}

type Server struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	size    int
	origins []string
	clock   scoreboard.Clock
}

func New(logger *slog.Logger, opts Options) *Server {
	return &Server{
		logger:  logger.With("component", "websocket_server"),
		tracer:  otel.Tracer(tracerName),
		size:    opts.BoardSize,
		origins: opts.OriginPatterns,
		clock:   opts.Clock,
	}
}

// Router - exposes /ping and the /ws game endpoint.
func (that *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/ping", pingHandler)
	router.Get("/ws", that.upgradeToWebSocket)

	return router
}

// Start - serves the router on port until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		return nil
	}
}

// upgradeToWebSocket - upgrades the connection and plays one session on it.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := ws.Accept(writer, req, &ws.AcceptOptions{OriginPatterns: that.origins})
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}
	defer conn.CloseNow()

	sess, err := that.newSession(conn)
	if err != nil {
		log.Error("failed to start session", "error", err)
		_ = conn.Close(ws.StatusInternalError, "failed to start game")
		return
	}

	log.Info("websocket connection established", "session_id", sess.id, "request_id", middleware.GetReqID(req.Context()))

	if err := sess.run(req.Context()); err != nil {
		log.Error("error handling messages", "session_id", sess.id, "error", err)
		_ = conn.Close(ws.StatusInternalError, "internal error")
		return
	}

	_ = conn.Close(ws.StatusNormalClosure, "")
}

func pingHandler(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write([]byte("pong")); err != nil {
		http.Error(writer, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
