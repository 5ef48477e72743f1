package mines

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

type Params struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	MineCount int `json:"mine_count"`
}

// Beginner is the fixed 9x9 board with 10 mines.
var Beginner = Params{Width: 9, Height: 9, MineCount: 10}

func (p Params) Size() int {
	return p.Width * p.Height
}

func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf(
			"%w: board must be at least 1x1 (have %dx%d)",
			ErrInvalidConfiguration, p.Width, p.Height,
		)
	}
	if p.Width > math.MaxInt/p.Height {
		return fmt.Errorf(
			"%w: board %dx%d overflows",
			ErrInvalidConfiguration, p.Width, p.Height,
		)
	}
	if p.MineCount < 0 || p.MineCount >= p.Size() {
		return fmt.Errorf(
			"%w: mine count must be in [0, %d) (have %d)",
			ErrInvalidConfiguration, p.Size(), p.MineCount,
		)
	}
	return nil
}

func (p Params) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Width, p.Height, p.MineCount)
}

func ParseSeed(seed string) (*Params, error) {
	p := &Params{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.Width, &p.Height, &p.MineCount)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (sseed = "%s", n = %d, err = %w)`,
			sseed, n, err,
		)
	}
	return p, nil
}

func (p Params) InBounds(i int) bool {
	return 0 <= i && i < p.Size()
}

func (p Params) PointInBounds(x, y int) bool {
	return 0 <= x && x < p.Width && 0 <= y && y < p.Height
}

func (p Params) Index(x, y int) int {
	return y*p.Width + x
}

// placeMines picks MineCount distinct indices from a shuffled list of all
// cells, so every layout is equally likely and placement always terminates.
func (p Params) placeMines(r *rand.Rand) Grid {
	grid := make(Grid, p.Size())
	for _, i := range r.Perm(p.Size())[:p.MineCount] {
		grid[i].mine = true
	}
	return grid
}
