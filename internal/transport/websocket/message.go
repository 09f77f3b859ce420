package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	ws "nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/entity"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/tictactoe"
)

const writeTimeout = 5 * time.Second

// remoteView queues view callbacks as outgoing messages. The session flushes
// the queue once the inbound message has been handled.
type remoteView struct {
	outbox []Message
}

func (that *remoteView) RenderBoard(board entity.Board) {
	that.push(ActionRenderBoard, BoardPayload{Board: board})
}

func (that *remoteView) UpdateCurrentPlayer(mark entity.Mark) {
	that.push(ActionCurrentPlayer, PlayerPayload{Player: mark})
}

func (that *remoteView) ShowGameResult(result *entity.MoveResult) {
	that.push(ActionGameResult, ResultPayload{Result: result})
}

func (that *remoteView) ShowError(message string) {
	that.push(ActionError, ErrorPayload{Message: message})
}

func (that *remoteView) EnableNewGameButton(enabled bool) {
	that.push(ActionNewGameEnabled, NewGameEnabledPayload{Enabled: enabled})
}

// BindCellActivationEvents does nothing: cells arrive as messages and the
// session hands them to HandleRawCellActivated, which runs the bound chain.
func (that *remoteView) BindCellActivationEvents(_ tictactoe.CellHandler) {}

func (that *remoteView) push(action string, payload any) {
	that.outbox = append(that.outbox, Message{
		Action:  action,
		Payload: json.RawMessage(mustMarshal(payload)),
	})
}

func (that *remoteView) drain() []Message {
	messages := that.outbox
	that.outbox = nil

	return messages
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func sendMessages(ctx context.Context, conn *ws.Conn, messages []Message) error {
	for _, message := range messages {
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := wsjson.Write(writeCtx, conn, message)
		cancel()

		if err != nil {
			return fmt.Errorf("failed to write %s message: %w", message.Action, err)
		}
	}

	return nil
}
