package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type RevealState uint8

const (
	Hidden RevealState = iota
	Revealed
	Flagged
)

func (s RevealState) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Revealed:
		return "revealed"
	case Flagged:
		return "flagged"
	}
	return "RevealState(" + strconv.Itoa(int(s)) + ")"
}

// Cell is one grid position. Mine placement is fixed when the board is
// built; only the reveal state and the detonation mark change afterwards.
type Cell struct {
	mine      bool
	state     RevealState
	detonated bool
}

func (c Cell) IsMine() bool { return c.mine }
func (c Cell) RevealState() RevealState { return c.state }
func (c Cell) Detonated() bool { return c.detonated }

// CellView is what a player is allowed to see of a cell: the mine bit and
// the hint are only filled in once the cell has been revealed.
type CellView struct {
	State     RevealState `json:"state"`
	Mine      bool        `json:"mine,omitempty"`
	Detonated bool        `json:"detonated,omitempty"`
	Hint      int         `json:"hint"`
}

func (v CellView) String() string {
	switch v.State {
	case Hidden:
		return "-"
	case Flagged:
		return "F"
	case Revealed:
		switch {
		case v.Detonated:
			return "X"
		case v.Mine:
			return "*"
		case v.Hint == 0:
			return "."
		default:
			return strconv.Itoa(v.Hint)
		}
	}
	return "?"
}

type Grid []Cell

func (g Grid) count(pred func(Cell) bool) int {
	n := 0
	for _, c := range g {
		if pred(c) {
			n++
		}
	}
	return n
}

// String renders the player's view of the game, one row per line.
func (g *Game) String() string {
	var b strings.Builder
	for y := range g.Height {
		for x := range g.Width {
			i := y*g.Width + x
			if x > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprint(&b, g.view(i).String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
