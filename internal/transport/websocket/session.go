package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	ws "nhooyr.io/websocket"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/game"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/scoreboard"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/tictactoe"
)

type handlerFunc func(ctx context.Context, msg *Message) error

// session is one connection playing its own game. Messages are handled one at
// a time by the read loop.
type session struct {
	id     string
	size   int
	logger *slog.Logger
	tracer trace.Tracer
	conn   *ws.Conn

	view       *remoteView
	controller *tictactoe.GameController
	tracker    *scoreboard.Tracker
	handlers   map[string]handlerFunc
}

func (that *Server) newSession(conn *ws.Conn) (*session, error) {
	engine, err := game.New(that.size)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	id := uuid.NewString()
	logger := that.logger.With("session_id", id)
	view := &remoteView{}

	controller, err := tictactoe.NewGameController(logger, engine, view)
	if err != nil {
		return nil, fmt.Errorf("failed to create game controller: %w", err)
	}

	tracker := scoreboard.NewTracker(controller, that.clock)
	controller.Use(tracker.Middleware())

	sess := &session{
		id:         id,
		size:       that.size,
		logger:     logger,
		tracer:     that.tracer,
		conn:       conn,
		view:       view,
		controller: controller,
		tracker:    tracker,
	}

	sess.handlers = map[string]handlerFunc{
		ActionCell:        sess.handleCell,
		ActionNewGame:     sess.handleNewGame,
		ActionResetScores: sess.handleResetScores,
	}

	return sess, nil
}

// run - starts the game and processes messages until the client leaves or ctx is done.
func (that *session) run(ctx context.Context) error {
	log := that.logger.With("method", "run")

	that.view.push(ActionSession, SessionPayload{ID: that.id, Size: that.size})
	that.controller.InitGame()
	that.pushScore()

	if err := sendMessages(ctx, that.conn, that.view.drain()); err != nil {
		return err
	}

	for {
		typ, data, err := that.conn.Read(ctx)
		if err != nil {
			if isClosed(err) || ctx.Err() != nil {
				log.Info("websocket connection closed")
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		if typ != ws.MessageText {
			that.pushError(fmt.Errorf("%w: expected text", apperror.ErrMalformedMessage))
		} else {
			that.handleMessage(ctx, data)
		}

		if err := sendMessages(ctx, that.conn, that.view.drain()); err != nil {
			return err
		}
	}
}

func (that *session) handleMessage(ctx context.Context, data []byte) {
	log := that.logger.With("method", "handleMessage")

	ctx, span := that.tracer.Start(ctx, "websocket.message",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("session.id", that.id)),
	)
	defer span.End()

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		err = fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
		log.Debug("failed to unmarshal message", "error", err)

		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.ErrMalformedMessage.Error())
		that.pushError(err)

		return
	}

	span.SetAttributes(attribute.String("message.action", msg.Action))

	handler, ok := that.handlers[msg.Action]
	if !ok {
		err := fmt.Errorf("%w: %q", apperror.ErrUnknownAction, msg.Action)
		log.Debug("error processing message", "error", err)

		span.SetStatus(codes.Error, apperror.ErrUnknownAction.Error())
		that.pushError(err)

		return
	}

	if err := handler(ctx, &msg); err != nil {
		log.Debug("error processing message", "action", msg.Action, "error", err)

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		that.pushError(err)
	}
}

// pushError reports protocol problems with the sentinel text only.
func (that *session) pushError(err error) {
	message := err.Error()
	for _, sentinel := range []error{apperror.ErrMalformedMessage, apperror.ErrUnknownAction} {
		if errors.Is(err, sentinel) {
			message = sentinel.Error()
		}
	}

	that.view.push(ActionError, ErrorPayload{Message: message})
}

func isClosed(err error) bool {
	switch ws.CloseStatus(err) {
	case ws.StatusNormalClosure, ws.StatusGoingAway:
		return true
	default:
		return false
	}
}
