package mines

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
)

var Log *slog.Logger = slog.Default()

type State uint8

const (
	NotStarted State = iota
	Running
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Game is a single board together with its state machine. A Game is not
// safe for concurrent use.
type Game struct {
	Params
	grid  Grid
	state State
}

// NewGame lays out a fresh board. A nil r is replaced with a generator
// seeded from the global math/rand/v2 source.
func NewGame(params Params, r *rand.Rand) (*Game, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	g := &Game{Params: params}
	g.Restart(r)
	return g, nil
}

// Restart discards the board and the state and lays out a new board with
// the same dimensions and mine count.
func (g *Game) Restart(r *rand.Rand) {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g.grid = g.placeMines(r)
	g.state = NotStarted
	Log.Debug("new board", slog.String("seed", g.Seed()))
}

func (g *Game) setState(s State) {
	Log.Debug("game state transition",
		slog.String("from", g.state.String()),
		slog.String("to", s.String()),
	)
	g.state = s
}

func (g *Game) checkIndex(i int) error {
	if !g.InBounds(i) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, g.Size())
	}
	return nil
}

// Reveal opens cell i. Revealing a mine loses the game and uncovers every
// mine; revealing a cell with no adjacent mines also opens its direct
// neighbours, without cascading any further.
func (g *Game) Reveal(i int) error {
	if err := g.checkIndex(i); err != nil {
		return err
	}

	switch g.state {
	case Won, Lost:
		return nil
	case NotStarted:
		g.setState(Running)
	case Running:
	}

	c := &g.grid[i]
	switch c.state {
	case Flagged, Revealed:
		return nil
	case Hidden:
		c.state = Revealed
	}

	if c.mine {
		c.detonated = true
		g.revealMines()
		g.setState(Lost)
		return nil
	}

	if g.adjacentMines(i) == 0 {
		for _, n := range g.neighbors(i) {
			if g.grid[n].state == Hidden {
				g.grid[n].state = Revealed
			}
		}
	}

	unopened := g.grid.count(func(c Cell) bool { return c.state != Revealed })
	if unopened == g.MineCount {
		g.setState(Won)
	}
	return nil
}

func (g *Game) revealMines() {
	for i := range g.grid {
		if g.grid[i].mine {
			g.grid[i].state = Revealed
		}
	}
}

// ToggleFlag flips a hidden cell to flagged and back. It only has an effect
// while the game is running.
func (g *Game) ToggleFlag(i int) error {
	if err := g.checkIndex(i); err != nil {
		return err
	}
	if g.state != Running {
		return nil
	}
	c := &g.grid[i]
	switch c.state {
	case Hidden:
		c.state = Flagged
	case Flagged:
		c.state = Hidden
	case Revealed:
	}
	return nil
}

func (g *Game) State() State { return g.state }
func (g *Game) IsWon() bool { return g.state == Won }
func (g *Game) IsLost() bool { return g.state == Lost }
func (g *Game) IsRunning() bool { return g.state == Running }
func (g *Game) IsNotStarted() bool { return g.state == NotStarted }
func (g *Game) Finished() bool { return g.state == Won || g.state == Lost }

// MinesRemaining is the mine count minus the number of flags. It goes
// negative when the player places more flags than there are mines.
func (g *Game) MinesRemaining() int {
	return g.MineCount - g.grid.count(func(c Cell) bool { return c.state == Flagged })
}

func (g *Game) Neighbors(i int) ([]int, error) {
	if err := g.checkIndex(i); err != nil {
		return nil, err
	}
	return g.neighbors(i), nil
}

func (g *Game) adjacentMines(i int) int {
	n := 0
	for _, j := range g.neighbors(i) {
		if g.grid[j].mine {
			n++
		}
	}
	return n
}

func (g *Game) AdjacentMineCount(i int) (int, error) {
	if err := g.checkIndex(i); err != nil {
		return 0, err
	}
	return g.adjacentMines(i), nil
}

// HintLabel maps a hint count to the name the presentation layer styles it by.
func HintLabel(n int) string {
	switch n {
	case 1:
		return "one"
	case 2:
		return "two"
	case 3:
		return "three"
	default:
		return "none"
	}
}

func (g *Game) NeighborMineCountLabel(i int) (string, error) {
	n, err := g.AdjacentMineCount(i)
	if err != nil {
		return "", err
	}
	return HintLabel(n), nil
}

func (g *Game) view(i int) CellView {
	c := g.grid[i]
	v := CellView{State: c.state}
	if c.state == Revealed {
		v.Mine = c.mine
		v.Detonated = c.detonated
		if !c.mine {
			v.Hint = g.adjacentMines(i)
		}
	}
	return v
}

func (g *Game) Cell(i int) (CellView, error) {
	if err := g.checkIndex(i); err != nil {
		return CellView{}, err
	}
	return g.view(i), nil
}

func (g *Game) Cells() []CellView {
	views := make([]CellView, len(g.grid))
	for i := range g.grid {
		views[i] = g.view(i)
	}
	return views
}

type wireCell struct {
	Mine, Detonated bool
	State           RevealState
}

type wireGame struct {
	Params
	Cells []wireCell
	State State
}

// MarshalBinary implements [encoding.BinaryMarshaler], which also makes
// Game usable as a gob value.
func (g *Game) MarshalBinary() ([]byte, error) {
	w := wireGame{Params: g.Params, State: g.state, Cells: make([]wireCell, len(g.grid))}
	for i, c := range g.grid {
		w.Cells[i] = wireCell{Mine: c.mine, Detonated: c.detonated, State: c.state}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Game) UnmarshalBinary(data []byte) error {
	var w wireGame
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	if err := w.Params.Validate(); err != nil {
		return err
	}
	if len(w.Cells) != w.Size() {
		return fmt.Errorf("corrupt game: %d cells for a %dx%d board", len(w.Cells), w.Width, w.Height)
	}
	if w.State > Lost {
		return fmt.Errorf("corrupt game: unknown state %d", w.State)
	}
	mineCount := 0
	for _, c := range w.Cells {
		if c.State > Flagged {
			return fmt.Errorf("corrupt game: unknown cell state %d", c.State)
		}
		if c.Mine {
			mineCount++
		}
	}
	if mineCount != w.MineCount {
		return fmt.Errorf("corrupt game: %d mines on a board declaring %d", mineCount, w.MineCount)
	}
	g.Params = w.Params
	g.state = w.State
	g.grid = make(Grid, len(w.Cells))
	for i, c := range w.Cells {
		g.grid[i] = Cell{mine: c.Mine, detonated: c.Detonated, state: c.State}
	}
	return nil
}

func DecodeGame(buf []byte) (*Game, error) {
	var g Game
	if err := g.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return &g, nil
}
