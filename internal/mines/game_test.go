package mines

import (
	"bytes"
	"encoding/gob"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, p Params, mines ...int) *Game {
	t.Helper()
	require.NoError(t, p.Validate())
	require.Len(t, mines, p.MineCount)
	g := &Game{Params: p, grid: make(Grid, p.Size())}
	for _, i := range mines {
		require.False(t, g.grid[i].mine, "duplicate mine %d", i)
		g.grid[i].mine = true
	}
	return g
}

func countMines(g *Game) int {
	return g.grid.count(func(c Cell) bool { return c.IsMine() })
}

func TestNewGame(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"1x2(0)", Params{Width: 1, Height: 2, MineCount: 0}},
		{"2x2(3)", Params{Width: 2, Height: 2, MineCount: 3}},
		{"9x9(10)", Beginner},
		{"16x16(40)", Params{Width: 16, Height: 16, MineCount: 40}},
		{"30x16(99)", Params{Width: 30, Height: 16, MineCount: 99}},
		{"30x16(479)", Params{Width: 30, Height: 16, MineCount: 479}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(1, 2))
			for range 20 {
				g, err := NewGame(test.params, r)
				require.NoError(t, err)
				assert.Equal(t, test.params, g.Params)
				assert.Equal(t, NotStarted, g.State())
				assert.Len(t, g.grid, test.params.Size())
				assert.Equal(t, test.params.MineCount, countMines(g))
				for _, c := range g.grid {
					assert.Equal(t, Hidden, c.RevealState())
					assert.False(t, c.Detonated())
				}
			}
		})
	}
}

func TestNewGameNilRand(t *testing.T) {
	g, err := NewGame(Beginner, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, countMines(g))
}

func TestNewGameInvalidConfiguration(t *testing.T) {
	tests := []Params{
		{Width: 0, Height: 5, MineCount: 0},
		{Width: 5, Height: -1, MineCount: 0},
		{Width: 3, Height: 3, MineCount: 9},
		{Width: 3, Height: 3, MineCount: 10},
		{Width: 3, Height: 3, MineCount: -1},
		{Width: math.MaxInt/4 + 1, Height: 4, MineCount: 1},
	}
	for _, p := range tests {
		t.Run(p.Seed(), func(t *testing.T) {
			g, err := NewGame(p, nil)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestMinePlacementCoversBoard(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	p := Params{Width: 4, Height: 4, MineCount: 1}
	seen := make(map[int]bool)
	for range 2000 {
		g, err := NewGame(p, r)
		require.NoError(t, err)
		for i, c := range g.grid {
			if c.IsMine() {
				seen[i] = true
			}
		}
	}
	assert.Len(t, seen, p.Size())
}

func TestNeighbors(t *testing.T) {
	for _, p := range []Params{
		{Width: 3, Height: 3},
		{Width: 5, Height: 4},
		{Width: 9, Height: 9},
	} {
		t.Run(p.Seed(), func(t *testing.T) {
			g := newTestGame(t, p)
			w, h := p.Width, p.Height

			corners := []int{0, w - 1, (h - 1) * w, h*w - 1}
			for _, i := range corners {
				ns, err := g.Neighbors(i)
				require.NoError(t, err)
				assert.Len(t, ns, 3, "corner %d", i)
			}

			edges := []int{1, w, 2*w - 1, (h-1)*w + 1}
			for _, i := range edges {
				ns, err := g.Neighbors(i)
				require.NoError(t, err)
				assert.Len(t, ns, 5, "edge %d", i)
			}

			ns, err := g.Neighbors(w + 1)
			require.NoError(t, err)
			assert.Len(t, ns, 8)
		})
	}
}

func TestNeighborsOfInteriorCell(t *testing.T) {
	g := newTestGame(t, Params{Width: 3, Height: 3})
	ns, err := g.Neighbors(4)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 5, 6, 7, 8}, ns)
	assert.NotContains(t, ns, 4)
}

func TestNeighborsDoNotWrapRows(t *testing.T) {
	g := newTestGame(t, Params{Width: 4, Height: 2})
	ns, err := g.Neighbors(3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{2, 6, 7}, ns)
}

func TestIndexOutOfRange(t *testing.T) {
	g := newTestGame(t, Params{Width: 2, Height: 2, MineCount: 1}, 3)
	for _, i := range []int{-1, 4, 100} {
		assert.ErrorIs(t, g.Reveal(i), ErrIndexOutOfRange)
		assert.ErrorIs(t, g.ToggleFlag(i), ErrIndexOutOfRange)
		_, err := g.Neighbors(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = g.AdjacentMineCount(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = g.NeighborMineCountLabel(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = g.Cell(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
	assert.Equal(t, NotStarted, g.State())
}

func TestAdjacentMineCount(t *testing.T) {
	// * 2 *
	// 1 3 2
	// . 1 *
	g := newTestGame(t, Params{Width: 3, Height: 3, MineCount: 3}, 0, 2, 8)
	want := []int{0, 2, 0, 1, 3, 2, 0, 1, 1}
	for i, n := range want {
		if g.grid[i].IsMine() {
			continue
		}
		got, err := g.AdjacentMineCount(i)
		require.NoError(t, err)
		assert.Equal(t, n, got, "cell %d", i)
	}
}

func TestRevealMine(t *testing.T) {
	g := newTestGame(t, Params{Width: 4, Height: 4, MineCount: 3}, 0, 5, 15)

	require.NoError(t, g.Reveal(5))

	assert.True(t, g.IsLost())
	for i, c := range g.grid {
		if c.IsMine() {
			assert.Equal(t, Revealed, c.RevealState(), "mine %d", i)
		} else {
			assert.Equal(t, Hidden, c.RevealState(), "safe cell %d", i)
		}
		assert.Equal(t, i == 5, c.Detonated(), "cell %d", i)
	}

	v, err := g.Cell(0)
	require.NoError(t, err)
	assert.True(t, v.Mine)
	assert.False(t, v.Detonated)
}

func TestRevealMineOverridesFlags(t *testing.T) {
	g := newTestGame(t, Params{Width: 4, Height: 1, MineCount: 2}, 0, 2)
	require.NoError(t, g.Reveal(1))
	require.NoError(t, g.ToggleFlag(0))
	require.NoError(t, g.Reveal(0))
	assert.Equal(t, Flagged, g.grid[0].RevealState())
	assert.True(t, g.IsRunning())

	require.NoError(t, g.ToggleFlag(0))
	require.NoError(t, g.Reveal(0))
	assert.True(t, g.IsLost())
	assert.True(t, g.grid[0].Detonated())
	assert.False(t, g.grid[2].Detonated())
	assert.Equal(t, Revealed, g.grid[2].RevealState())
}

func TestRevealCascadeIsSingleLevel(t *testing.T) {
	// . . . 1 *
	g := newTestGame(t, Params{Width: 5, Height: 1, MineCount: 1}, 4)

	require.NoError(t, g.Reveal(0))

	assert.Equal(t, Revealed, g.grid[0].RevealState())
	assert.Equal(t, Revealed, g.grid[1].RevealState())
	assert.Equal(t, Hidden, g.grid[2].RevealState(), "neighbour of a cascaded zero cell stays hidden")
	assert.Equal(t, Hidden, g.grid[3].RevealState())
	assert.True(t, g.IsRunning())

	require.NoError(t, g.Reveal(2))
	assert.Equal(t, Revealed, g.grid[3].RevealState())
	assert.True(t, g.IsWon())
}

func TestRevealCascadeSkipsFlaggedNeighbours(t *testing.T) {
	g := newTestGame(t, Params{Width: 4, Height: 4, MineCount: 1}, 15)

	require.NoError(t, g.Reveal(3))
	require.NoError(t, g.ToggleFlag(4))
	require.NoError(t, g.Reveal(0))

	assert.Equal(t, Flagged, g.grid[4].RevealState())
	assert.Equal(t, Revealed, g.grid[1].RevealState())
	assert.Equal(t, Revealed, g.grid[5].RevealState())
}

func TestRevealNonZeroDoesNotCascade(t *testing.T) {
	g := newTestGame(t, Params{Width: 3, Height: 3, MineCount: 1}, 8)
	require.NoError(t, g.Reveal(4))
	for i, c := range g.grid {
		assert.Equal(t, i == 4, c.RevealState() == Revealed, "cell %d", i)
	}
}

func TestRevealIgnoredAfterGameEnds(t *testing.T) {
	g := newTestGame(t, Params{Width: 3, Height: 1, MineCount: 1}, 0)
	require.NoError(t, g.Reveal(0))
	require.True(t, g.IsLost())

	require.NoError(t, g.Reveal(2))
	assert.Equal(t, Hidden, g.grid[2].RevealState())
	assert.True(t, g.IsLost())
}

func TestWinOnFullBoard(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	g, err := NewGame(Beginner, r)
	require.NoError(t, err)

	safe := 0
	for i, c := range g.grid {
		if c.IsMine() {
			continue
		}
		safe++
		if g.grid[i].RevealState() == Revealed {
			continue
		}
		require.False(t, g.Finished())
		require.NoError(t, g.Reveal(i))
		unopened := g.grid.count(func(c Cell) bool { return c.RevealState() != Revealed })
		assert.Equal(t, unopened == Beginner.MineCount, g.IsWon(), "after revealing %d", i)
	}
	assert.Equal(t, 71, safe)
	assert.True(t, g.IsWon())
	assert.Equal(t, 10, g.MinesRemaining())
}

func TestFlaggedCellsCountAsUnopened(t *testing.T) {
	g := newTestGame(t, Params{Width: 2, Height: 2, MineCount: 1}, 3)
	require.NoError(t, g.Reveal(0))
	require.NoError(t, g.ToggleFlag(3))
	require.NoError(t, g.Reveal(1))
	assert.True(t, g.IsRunning())
	require.NoError(t, g.Reveal(2))
	assert.True(t, g.IsWon())
	assert.Equal(t, Flagged, g.grid[3].RevealState())
	assert.Equal(t, 0, g.MinesRemaining())
}

func TestTwoByTwoScenario(t *testing.T) {
	g := newTestGame(t, Params{Width: 2, Height: 2, MineCount: 1}, 3)

	require.NoError(t, g.Reveal(0))
	hint, err := g.AdjacentMineCount(0)
	require.NoError(t, err)
	assert.Equal(t, 1, hint)
	assert.Equal(t, Revealed, g.grid[0].RevealState())
	assert.Equal(t, Hidden, g.grid[1].RevealState())
	assert.Equal(t, Hidden, g.grid[2].RevealState())
	assert.Equal(t, 1, g.MinesRemaining())
	assert.Equal(t, Running, g.State())

	require.NoError(t, g.Reveal(1))
	assert.Equal(t, Hidden, g.grid[2].RevealState())
	assert.Equal(t, Running, g.State())

	require.NoError(t, g.Reveal(2))
	assert.Equal(t, Won, g.State())
	assert.Equal(t, Hidden, g.grid[3].RevealState())
}

func TestToggleFlag(t *testing.T) {
	g := newTestGame(t, Params{Width: 3, Height: 3, MineCount: 1}, 8)

	require.NoError(t, g.ToggleFlag(0))
	assert.Equal(t, Hidden, g.grid[0].RevealState(), "flagging before the first reveal is ignored")

	require.NoError(t, g.Reveal(4))
	require.True(t, g.IsRunning())

	require.NoError(t, g.ToggleFlag(0))
	assert.Equal(t, Flagged, g.grid[0].RevealState())
	require.NoError(t, g.ToggleFlag(0))
	assert.Equal(t, Hidden, g.grid[0].RevealState())

	require.NoError(t, g.ToggleFlag(4))
	assert.Equal(t, Revealed, g.grid[4].RevealState())

	require.NoError(t, g.ToggleFlag(0))
	require.NoError(t, g.Reveal(0))
	assert.Equal(t, Flagged, g.grid[0].RevealState(), "flagged cells cannot be revealed")

	require.NoError(t, g.Reveal(8))
	require.True(t, g.IsLost())
	require.NoError(t, g.ToggleFlag(1))
	assert.Equal(t, Hidden, g.grid[1].RevealState(), "flagging after the game ended is ignored")
}

func TestMinesRemainingGoesNegative(t *testing.T) {
	g := newTestGame(t, Params{Width: 3, Height: 3, MineCount: 1}, 8)
	require.NoError(t, g.Reveal(4))
	for _, i := range []int{0, 1, 2} {
		require.NoError(t, g.ToggleFlag(i))
	}
	assert.Equal(t, -2, g.MinesRemaining())
}

func TestNeighborMineCountLabel(t *testing.T) {
	// * * * .
	// . . . .
	g := newTestGame(t, Params{Width: 4, Height: 2, MineCount: 3}, 0, 1, 2)
	tests := map[int]string{
		3: "one",
		4: "two",
		5: "three",
		6: "two",
		7: "one",
	}
	for i, want := range tests {
		got, err := g.NeighborMineCountLabel(i)
		require.NoError(t, err)
		assert.Equal(t, want, got, "cell %d", i)
	}
	assert.Equal(t, "none", HintLabel(0))
	assert.Equal(t, "none", HintLabel(4))
	assert.Equal(t, "none", HintLabel(8))
}

func TestCellViewHidesMines(t *testing.T) {
	g := newTestGame(t, Params{Width: 2, Height: 2, MineCount: 1}, 3)
	for i, v := range g.Cells() {
		assert.Equal(t, CellView{State: Hidden}, v, "cell %d", i)
	}

	require.NoError(t, g.Reveal(0))
	v, err := g.Cell(0)
	require.NoError(t, err)
	assert.Equal(t, CellView{State: Revealed, Hint: 1}, v)

	v, err = g.Cell(3)
	require.NoError(t, err)
	assert.False(t, v.Mine)
}

func TestRestart(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	g, err := NewGame(Beginner, r)
	require.NoError(t, err)

	for i := range g.grid {
		if g.grid[i].IsMine() {
			require.NoError(t, g.Reveal(i))
			break
		}
	}
	require.True(t, g.IsLost())

	g.Restart(r)
	assert.True(t, g.IsNotStarted())
	assert.Equal(t, Beginner, g.Params)
	assert.Equal(t, Beginner.MineCount, countMines(g))
	for _, c := range g.grid {
		assert.Equal(t, Hidden, c.RevealState())
		assert.False(t, c.Detonated())
	}
}

func TestDecodeGame(t *testing.T) {
	g := newTestGame(t, Params{Width: 3, Height: 3, MineCount: 1}, 8)
	require.NoError(t, g.Reveal(0))
	require.NoError(t, g.ToggleFlag(8))

	b, err := g.MarshalBinary()
	require.NoError(t, err)

	decoded, err := DecodeGame(b)
	require.NoError(t, err)
	assert.Equal(t, g.Params, decoded.Params)
	assert.Equal(t, g.State(), decoded.State())
	assert.Equal(t, g.grid, decoded.grid)
	assert.Equal(t, g.String(), decoded.String())

	_, err = DecodeGame([]byte("not a game"))
	assert.Error(t, err)
}

func TestDecodeGameRejectsCorruptBoards(t *testing.T) {
	params := Params{Width: 2, Height: 2, MineCount: 1}
	valid := func() wireGame {
		return wireGame{
			Params: params,
			State:  Running,
			Cells:  []wireCell{{Mine: true}, {State: Revealed}, {}, {State: Flagged}},
		}
	}

	tests := map[string]func(w *wireGame){
		"cell count":     func(w *wireGame) { w.Cells = w.Cells[:3] },
		"too many mines": func(w *wireGame) { w.Cells[2].Mine = true },
		"no mines":       func(w *wireGame) { w.Cells[0].Mine = false },
		"game state":     func(w *wireGame) { w.State = Lost + 1 },
		"cell state":     func(w *wireGame) { w.Cells[1].State = Flagged + 1 },
		"params":         func(w *wireGame) { w.MineCount = 4 },
	}
	for name, corrupt := range tests {
		t.Run(name, func(t *testing.T) {
			w := valid()
			corrupt(&w)
			var buf bytes.Buffer
			require.NoError(t, gob.NewEncoder(&buf).Encode(w))

			g, err := DecodeGame(buf.Bytes())
			assert.Nil(t, g)
			assert.Error(t, err)
		})
	}

	w := valid()
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(w))
	g, err := DecodeGame(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 0, g.MinesRemaining())
}

func TestString(t *testing.T) {
	g := newTestGame(t, Params{Width: 3, Height: 2, MineCount: 1}, 5)
	require.NoError(t, g.Reveal(0))
	require.NoError(t, g.ToggleFlag(2))
	assert.Equal(t, ". 1 F\n. 1 -\n", g.String())

	require.NoError(t, g.Reveal(5))
	assert.Equal(t, ". 1 F\n. 1 X\n", g.String())
}

func TestSeed(t *testing.T) {
	p, err := ParseSeed(Beginner.Seed())
	require.NoError(t, err)
	assert.Equal(t, Beginner, *p)

	_, err = ParseSeed("9:9")
	assert.Error(t, err)
}
