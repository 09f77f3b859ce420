package suite

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	maxWaitDuration = 10 * time.Second
	maxFrames       = 64
)

// Frame is a decoded server message.
type Frame struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Server *httptest.Server
}

// New - serves the handler built with the suite logger over httptest until the test ends.
func New(t *testing.T, build func(logger *slog.Logger) http.Handler) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(func() {
		cancel()
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	server := httptest.NewServer(build(logger))
	t.Cleanup(server.Close)

	return ctx, &Suite{
		T:      t,
		Logger: logger,
		Server: server,
	}
}

// Dial - opens a websocket to path on the test server.
func (that *Suite) Dial(ctx context.Context, path string) *websocket.Conn {
	that.Helper()

	url := "ws" + strings.TrimPrefix(that.Server.URL, "http") + path

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(that, err)

	that.Cleanup(func() {
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	})

	return conn
}

func (that *Suite) Send(ctx context.Context, conn *websocket.Conn, action string, payload any) {
	that.Helper()

	frame := Frame{Action: action}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(that, err)
		frame.Payload = raw
	}

	require.NoError(that, wsjson.Write(ctx, conn, frame))
}

func (that *Suite) SendRaw(ctx context.Context, conn *websocket.Conn, data string) {
	that.Helper()

	require.NoError(that, conn.Write(ctx, websocket.MessageText, []byte(data)))
}

// Collect - reads frames up to and including the first one with action until.
func (that *Suite) Collect(ctx context.Context, conn *websocket.Conn, until string) []Frame {
	that.Helper()

	var frames []Frame
	for i := 0; i < maxFrames; i++ {
		var frame Frame
		require.NoError(that, wsjson.Read(ctx, conn, &frame))

		frames = append(frames, frame)
		if frame.Action == until {
			return frames
		}
	}

	that.Fatalf("no %q frame within %d frames", until, maxFrames)

	return nil
}

// Last - decodes the payload of the last frame with action.
func (that *Suite) Last(frames []Frame, action string, v any) {
	that.Helper()

	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Action == action {
			require.NoError(that, json.Unmarshal(frames[i].Payload, v))
			return
		}
	}

	that.Fatalf("no %q frame in %d frames", action, len(frames))
}
