package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/nsf/termbox-go"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/mines"
)

// screen is the part of termbox the model draws through.
type screen interface {
	SetCell(x, y int, ch rune, fg, bg termbox.Attribute)
}

type model struct {
	log     *logrus.Logger
	game    *mines.Game
	r       *rand.Rand
	x, y    int
	elapsed int
}

func newModel(log *logrus.Logger, params mines.Params, r *rand.Rand) (*model, error) {
	game, err := mines.NewGame(params, r)
	if err != nil {
		return nil, err
	}
	return &model{log: log, game: game, r: r}, nil
}

func (m *model) cursor() int {
	return m.game.Index(m.x, m.y)
}

func (m *model) move(dx, dy int) {
	if m.game.PointInBounds(m.x+dx, m.y+dy) {
		m.x += dx
		m.y += dy
	}
}

func (m *model) restart() {
	m.game.Restart(m.r)
	m.elapsed = 0
	m.log.Info("restarted")
}

// tick advances the counter by one second while the game is running.
func (m *model) tick() {
	if m.game.IsRunning() {
		m.elapsed++
	}
}

// handleKey applies one key press and reports whether the player asked to
// quit.
func (m *model) handleKey(ev termbox.Event) (quit bool) {
	switch ev.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return true
	case termbox.KeyArrowLeft:
		m.move(-1, 0)
	case termbox.KeyArrowRight:
		m.move(1, 0)
	case termbox.KeyArrowUp:
		m.move(0, -1)
	case termbox.KeyArrowDown:
		m.move(0, 1)
	case termbox.KeySpace, termbox.KeyEnter:
		m.reveal()
	}

	switch ev.Ch {
	case 'q':
		return true
	case 'h':
		m.move(-1, 0)
	case 'l':
		m.move(1, 0)
	case 'k':
		m.move(0, -1)
	case 'j':
		m.move(0, 1)
	case 'f':
		if err := m.game.ToggleFlag(m.cursor()); err != nil {
			m.log.WithError(err).Error("flag")
		}
	case 'r':
		m.restart()
	}
	return false
}

func (m *model) reveal() {
	before := m.game.State()
	if err := m.game.Reveal(m.cursor()); err != nil {
		m.log.WithError(err).Error("reveal")
		return
	}
	if after := m.game.State(); after != before {
		m.log.WithFields(logrus.Fields{
			"from":    before.String(),
			"to":      after.String(),
			"elapsed": m.elapsed,
		}).Info("state changed")
	}
}

func hintColor(label string) termbox.Attribute {
	switch label {
	case "one":
		return termbox.ColorBlue
	case "two":
		return termbox.ColorGreen
	case "three":
		return termbox.ColorRed
	default:
		return termbox.ColorDefault
	}
}

func cellStyle(v mines.CellView) (ch rune, fg, bg termbox.Attribute) {
	ch = []rune(v.String())[0]
	fg, bg = termbox.ColorDefault, termbox.ColorDefault
	switch {
	case v.State == mines.Flagged:
		fg = termbox.ColorYellow | termbox.AttrBold
	case v.Detonated:
		fg, bg = termbox.ColorBlack, termbox.ColorRed
	case v.Mine:
		fg = termbox.ColorRed | termbox.AttrBold
	case v.State == mines.Revealed:
		fg = hintColor(mines.HintLabel(v.Hint))
	}
	return ch, fg, bg
}

func counter(n int) string {
	return fmt.Sprintf("%03d", n)
}

func (m *model) status() string {
	switch m.game.State() {
	case mines.Won:
		return "You won! r: restart  q: quit"
	case mines.Lost:
		return "Boom. r: restart  q: quit"
	default:
		return "space: reveal  f: flag  r: restart  q: quit"
	}
}

func drawString(s screen, x, y int, text string, fg termbox.Attribute) {
	for i, ch := range []rune(text) {
		s.SetCell(x+i, y, ch, fg, termbox.ColorDefault)
	}
}

// draw lays out the counters on the first line, the board from the third
// line on, and the key help below it. Each cell takes two columns.
func (m *model) draw(s screen) {
	drawString(s, 0, 0, counter(m.game.MinesRemaining()), termbox.ColorRed)
	drawString(s, m.game.Width*2-3, 0, counter(m.elapsed), termbox.ColorRed)

	for i, v := range m.game.Cells() {
		x, y := i%m.game.Width, i/m.game.Width
		ch, fg, bg := cellStyle(v)
		if x == m.x && y == m.y {
			fg |= termbox.AttrReverse
		}
		s.SetCell(x*2, y+2, ch, fg, bg)
	}

	drawString(s, 0, m.game.Height+3, m.status(), termbox.ColorDefault)
}
