package mines

var offsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// neighbors assumes i is in bounds.
func (p Params) neighbors(i int) []int {
	row, col := i/p.Width, i%p.Width
	ns := make([]int, 0, len(offsets))
	for _, d := range offsets {
		r, c := row+d[0], col+d[1]
		if 0 <= r && r < p.Height && 0 <= c && c < p.Width {
			ns = append(ns, r*p.Width+c)
		}
	}
	return ns
}
