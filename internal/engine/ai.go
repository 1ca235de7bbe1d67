package engine

const aiInf = int(1e9)

// Line directions: horizontal, vertical and both diagonals.
var (
	dirRow = [4]int{1, 0, 1, 1}
	dirCol = [4]int{0, 1, 1, -1}
)

// aiBoard is a private search copy of one room's board. Cells hold +1
// for the side to move's perspective of black, -1 for white, 0 empty.
type aiBoard struct {
	g    [BoardSize][BoardSize]int
	turn int // +1 or -1, side the engine is choosing a move for
}

func boardFromStones(stones []Stone, color int) *aiBoard {
	b := &aiBoard{}
	for _, s := range stones {
		v := -1
		if s.Color == Black {
			v = 1
		}
		b.g[s.Row][s.Col] = v
	}
	if color == Black {
		b.turn = 1
	} else {
		b.turn = -1
	}
	return b
}

func (b *aiBoard) winAt(x, y int) bool {
	p := b.g[x][y]
	if p == 0 {
		return false
	}
	for d := 0; d < 4; d++ {
		cnt := 1
		for s := 1; s < 5; s++ {
			nx, ny := x+dirRow[d]*s, y+dirCol[d]*s
			if !inside(nx, ny) || b.g[nx][ny] != p {
				break
			}
			cnt++
		}
		for s := 1; s < 5; s++ {
			nx, ny := x-dirRow[d]*s, y-dirCol[d]*s
			if !inside(nx, ny) || b.g[nx][ny] != p {
				break
			}
			cnt++
		}
		if cnt >= 5 {
			return true
		}
	}
	return false
}

// candidates returns the empty cells within distance two of any stone,
// or the single center cell on an empty board.
func (b *aiBoard) candidates() []int {
	var near [BoardSize][BoardSize]bool
	hasStone := false
	for i := 0; i < BoardSize; i++ {
		for j := 0; j < BoardSize; j++ {
			if b.g[i][j] == 0 {
				continue
			}
			hasStone = true
			for di := -2; di <= 2; di++ {
				for dj := -2; dj <= 2; dj++ {
					ni, nj := i+di, j+dj
					if inside(ni, nj) {
						near[ni][nj] = true
					}
				}
			}
		}
	}
	if !hasStone {
		return []int{center*BoardSize + center}
	}
	var res []int
	for i := 0; i < BoardSize; i++ {
		for j := 0; j < BoardSize; j++ {
			if near[i][j] && b.g[i][j] == 0 {
				res = append(res, i*BoardSize+j)
			}
		}
	}
	return res
}

// runLength counts consecutive stones of p on both sides of (x, y) along
// direction d, excluding (x, y) itself, and reports whether both ends of
// the run are open.
func (b *aiBoard) runLength(x, y, d, p int) (length int, open bool) {
	l := 0
	for s := 1; s < 5; s++ {
		nx, ny := x+dirRow[d]*s, y+dirCol[d]*s
		if !inside(nx, ny) || b.g[nx][ny] != p {
			break
		}
		l++
	}
	r := 0
	for s := 1; s < 5; s++ {
		nx, ny := x-dirRow[d]*s, y-dirCol[d]*s
		if !inside(nx, ny) || b.g[nx][ny] != p {
			break
		}
		r++
	}
	lx, ly := x+dirRow[d]*(l+1), y+dirCol[d]*(l+1)
	rx, ry := x-dirRow[d]*(r+1), y-dirCol[d]*(r+1)
	open = inside(lx, ly) && b.g[lx][ly] == 0 && inside(rx, ry) && b.g[rx][ry] == 0
	return l + r, open
}

func (b *aiBoard) makesOpenRun(x, y, p, runLen int) bool {
	b.g[x][y] = p
	found := false
	for d := 0; d < 4; d++ {
		if length, open := b.runLength(x, y, d, p); length+1 == runLen && open {
			found = true
			break
		}
	}
	b.g[x][y] = 0
	return found
}

func (b *aiBoard) isOpenFour(x, y, p int) bool  { return b.makesOpenRun(x, y, p, 4) }
func (b *aiBoard) isOpenThree(x, y, p int) bool { return b.makesOpenRun(x, y, p, 3) }

// threatSearch looks for a forced win by chaining open threes and fours:
// the move wins if every opposing reply still leaves a winning threat.
func (b *aiBoard) threatSearch(depth int) bool {
	if depth == 0 {
		return false
	}
	p := b.turn
	for _, m := range b.candidates() {
		x, y := m/BoardSize, m%BoardSize
		if !b.isOpenFour(x, y, p) && !b.isOpenThree(x, y, p) {
			continue
		}
		b.g[x][y] = p
		if b.winAt(x, y) {
			b.g[x][y] = 0
			return true
		}
		blocked := false
		b.turn = -b.turn
		for _, reply := range b.candidates() {
			rx, ry := reply/BoardSize, reply%BoardSize
			b.g[rx][ry] = b.turn
			b.turn = -b.turn
			if !b.threatSearch(depth - 1) {
				blocked = true
			}
			b.turn = -b.turn
			b.g[rx][ry] = 0
			if blocked {
				break
			}
		}
		b.turn = -b.turn
		b.g[x][y] = 0
		if !blocked {
			return true
		}
	}
	return false
}

func (b *aiBoard) evaluate() int {
	score := 0
	p := b.turn
	for _, m := range b.candidates() {
		x, y := m/BoardSize, m%BoardSize
		if b.isOpenFour(x, y, p) {
			score += 100000
		}
		if b.isOpenThree(x, y, p) {
			score += 10000
		}
	}
	return score
}

func (b *aiBoard) negamax(depth, alpha, beta int) int {
	if depth == 0 {
		return b.evaluate()
	}
	for _, m := range b.candidates() {
		x, y := m/BoardSize, m%BoardSize
		b.g[x][y] = b.turn
		b.turn = -b.turn
		v := -b.negamax(depth-1, -beta, -alpha)
		b.turn = -b.turn
		b.g[x][y] = 0
		if v > alpha {
			alpha = v
		}
		if alpha >= beta {
			break
		}
	}
	return alpha
}

// bestMove picks a move in four stages: take an immediate win, block the
// opponent's immediate win, follow a forced threat sequence, otherwise
// fall back to a shallow negamax.
func (b *aiBoard) bestMove() (int, int) {
	for _, m := range b.candidates() {
		x, y := m/BoardSize, m%BoardSize
		b.g[x][y] = b.turn
		won := b.winAt(x, y)
		b.g[x][y] = 0
		if won {
			return x, y
		}
	}

	opp := -b.turn
	for _, m := range b.candidates() {
		x, y := m/BoardSize, m%BoardSize
		b.g[x][y] = opp
		won := b.winAt(x, y)
		b.g[x][y] = 0
		if won {
			return x, y
		}
	}

	for _, m := range b.candidates() {
		x, y := m/BoardSize, m%BoardSize
		b.g[x][y] = b.turn
		forced := b.threatSearch(2)
		b.g[x][y] = 0
		if forced {
			return x, y
		}
	}

	best := -1
	bestVal := -aiInf
	for _, m := range b.candidates() {
		x, y := m/BoardSize, m%BoardSize
		b.g[x][y] = b.turn
		b.turn = -b.turn
		v := -b.negamax(2, -aiInf, aiInf)
		b.turn = -b.turn
		b.g[x][y] = 0
		if v > bestVal {
			bestVal = v
			best = m
		}
	}
	if best == -1 {
		return center, center
	}
	return best / BoardSize, best % BoardSize
}
