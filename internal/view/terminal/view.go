// Package terminal renders the game in a terminal with tview.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/text/message"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/entity"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/scoreboard"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/tictactoe"
)

// each cell is drawn as " X "
const cellWidth = 3

type Symbols struct {
	X      rune
	O      rune
	Empty  rune
	Cursor rune
}

// Scoreboard is what the status panel shows below the game state.
type Scoreboard interface {
	Summary(printer *message.Printer) string
	Elapsed() time.Duration
}

// Controls are the actions bound to keys besides cell activation.
type Controls struct {
	NewGame     func() tictactoe.Response
	ResetScores func() tictactoe.Response
	Scoreboard  Scoreboard
}

// View implements tictactoe.View on top of a tview application. Every callback
// runs on the tview event goroutine.
type View struct {
	logger  *slog.Logger
	app     *tview.Application
	printer *message.Printer
	symbols Symbols

	layout *tview.Flex
	board  *tview.Box
	status *tview.TextView

	cells          entity.Board
	player         entity.Mark
	result         *entity.MoveResult
	errorMessage   string
	newGameEnabled bool
	handler        tictactoe.CellHandler
	controls       Controls

	cursorRow int
	cursorCol int
}

func New(logger *slog.Logger, app *tview.Application, size int, symbols Symbols, printer *message.Printer) *View {
	view := &View{
		logger:    logger.With("component", "terminal_view"),
		app:       app,
		printer:   printer,
		symbols:   symbols,
		board:     tview.NewBox(),
		status:    tview.NewTextView(),
		cells:     entity.NewBoard(size),
		cursorRow: size / 2,
		cursorCol: size / 2,
	}

	view.board.SetBorder(true).SetTitle(" Tic-Tac-Toe ")
	view.board.SetDrawFunc(view.drawBoard)
	view.board.SetInputCapture(view.HandleKey)

	view.status.SetDynamicColors(true)
	view.status.SetBorder(true)
	view.status.SetBorderPadding(0, 0, 1, 1)
	view.status.SetTitle(" Status ")
	view.status.SetTitleAlign(tview.AlignLeft)

	view.layout = tview.NewFlex().
		AddItem(view.board, size*cellWidth+2, 0, true).
		AddItem(view.status, 0, 1, false)

	view.refresh()

	return view
}

func (that *View) SetControls(controls Controls) {
	that.controls = controls
	that.refresh()
}

func (that *View) Primitive() tview.Primitive {
	return that.layout
}

// Run blocks until the user quits or ctx is cancelled. The status panel is
// redrawn every tick so the round timer keeps moving.
func (that *View) Run(ctx context.Context, tick time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				that.app.Stop()
				return
			case <-ticker.C:
				that.app.QueueUpdateDraw(that.refresh)
			}
		}
	}()

	that.app.SetRoot(that.layout, true).SetFocus(that.board)
	if err := that.app.Run(); err != nil {
		return fmt.Errorf("failed to run terminal ui: %w", err)
	}

	return nil
}

func (that *View) RenderBoard(board entity.Board) {
	that.cells = board
	that.clampCursor()
}

func (that *View) UpdateCurrentPlayer(mark entity.Mark) {
	that.player = mark
	that.refresh()
}

func (that *View) ShowGameResult(result *entity.MoveResult) {
	that.result = result
	that.refresh()
}

func (that *View) ShowError(message string) {
	that.errorMessage = message
	that.refresh()
}

func (that *View) EnableNewGameButton(enabled bool) {
	that.newGameEnabled = enabled
	that.refresh()
}

func (that *View) BindCellActivationEvents(handler tictactoe.CellHandler) {
	that.handler = handler
}

// HandleKey - input capture of the board.
func (that *View) HandleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		that.moveCursor(-1, 0)
	case tcell.KeyDown:
		that.moveCursor(1, 0)
	case tcell.KeyLeft:
		that.moveCursor(0, -1)
	case tcell.KeyRight:
		that.moveCursor(0, 1)
	case tcell.KeyEnter:
		that.activate()
	case tcell.KeyEscape:
		that.quit()
	case tcell.KeyRune:
		switch event.Rune() {
		case 'k':
			that.moveCursor(-1, 0)
		case 'j':
			that.moveCursor(1, 0)
		case 'h':
			that.moveCursor(0, -1)
		case 'l':
			that.moveCursor(0, 1)
		case ' ':
			that.activate()
		case 'n':
			if that.newGameEnabled && that.controls.NewGame != nil {
				that.controls.NewGame()
			}
		case 'r':
			if that.controls.ResetScores != nil {
				that.controls.ResetScores()
			}
		case 'q':
			that.quit()
		default:
			return event
		}
	default:
		return event
	}

	return nil
}

func (that *View) Cursor() (int, int) {
	return that.cursorRow, that.cursorCol
}

func (that *View) activate() {
	if that.handler == nil {
		return
	}

	that.handler(that.cursorRow, that.cursorCol)
}

func (that *View) quit() {
	that.logger.Debug("quit requested")
	that.app.Stop()
}

func (that *View) moveCursor(rows, cols int) {
	row, col := that.cursorRow+rows, that.cursorCol+cols
	if row < 0 || row >= len(that.cells) || col < 0 || col >= len(that.cells) {
		return
	}

	that.cursorRow, that.cursorCol = row, col
}

func (that *View) clampCursor() {
	last := len(that.cells) - 1
	that.cursorRow = min(max(that.cursorRow, 0), max(last, 0))
	that.cursorCol = min(max(that.cursorCol, 0), max(last, 0))
}

func (that *View) symbol(mark entity.Mark) rune {
	switch mark {
	case entity.PlayerX:
		return that.symbols.X
	case entity.PlayerO:
		return that.symbols.O
	default:
		return that.symbols.Empty
	}
}

func (that *View) drawBoard(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	left, top := x+1, y+1

	for row, cells := range that.cells {
		for col, mark := range cells {
			style := tcell.StyleDefault
			char := that.symbol(mark)

			if row == that.cursorRow && col == that.cursorCol {
				style = style.Reverse(true)
				if mark == entity.None {
					char = that.symbols.Cursor
				}
			}

			cellLeft := left + col*cellWidth
			screen.SetContent(cellLeft, top+row, ' ', nil, style)
			screen.SetContent(cellLeft+1, top+row, char, nil, style)
			screen.SetContent(cellLeft+2, top+row, ' ', nil, style)
		}
	}

	return x + 1, y + 1, width - 2, height - 2
}

func (that *View) refresh() {
	that.status.SetText(that.statusText())
}

func (that *View) statusText() string {
	var text strings.Builder

	if that.player.IsPlayer() {
		fmt.Fprintf(&text, "[white::b]Player:[-:-:-] %c\n", that.symbol(that.player))
	} else {
		text.WriteString("[white::b]Player:[-:-:-] -\n")
	}

	if that.result != nil {
		fmt.Fprintf(&text, "[green::b]%s[-:-:-]\n", that.resultText())
	}

	if that.errorMessage != "" {
		fmt.Fprintf(&text, "[red]%s[-]\n", tview.Escape(that.errorMessage))
	}

	if that.controls.Scoreboard != nil {
		text.WriteString("\n")
		text.WriteString(that.controls.Scoreboard.Summary(that.printer))
		fmt.Fprintf(&text, "\nTime: %s\n", scoreboard.FormatElapsed(that.controls.Scoreboard.Elapsed()))
	}

	text.WriteString("\n[dimgray]hjkl/↑↓←→ move   ⏎ play")
	if that.newGameEnabled {
		text.WriteString("   n new game")
	}
	text.WriteString("\nr reset scores   q quit[-]")

	return text.String()
}

func (that *View) resultText() string {
	switch that.result.Status {
	case entity.StatusWon:
		return fmt.Sprintf("%c wins", that.symbol(that.result.Winner))
	case entity.StatusDraw:
		return "Draw"
	default:
		return ""
	}
}
