package engine

import "sync"

const center = BoardSize / 2

type cursor struct {
	id  int
	row int
	col int
}

type room struct {
	cursors   []*cursor // join order, preserved in snapshots
	stones    []Stone
	nextColor int
}

func newRoomState() *room {
	return &room{nextColor: Black}
}

func (rm *room) cursorFor(playerID int) *cursor {
	for _, c := range rm.cursors {
		if c.id == playerID {
			return c
		}
	}
	c := &cursor{id: playerID, row: center, col: center}
	rm.cursors = append(rm.cursors, c)
	return c
}

func (rm *room) occupied(row, col int) bool {
	for _, s := range rm.stones {
		if s.Row == row && s.Col == col {
			return true
		}
	}
	return false
}

// Gomoku is the in-process Engine implementation. One instance serves
// every room; board mutations are short and run under a single mutex,
// while AI search works on a copy so it never holds the lock.
type Gomoku struct {
	mu    sync.Mutex
	rooms map[int]*room
}

func NewGomoku() *Gomoku {
	return &Gomoku{rooms: make(map[int]*room)}
}

// inside reports whether (row, col) is in the playable range. Row and
// column 0 are the board border and are not playable.
func inside(row, col int) bool {
	return row >= 1 && row < BoardSize && col >= 1 && col < BoardSize
}

func (g *Gomoku) roomState(roomID int) *room {
	rm, ok := g.rooms[roomID]
	if !ok {
		rm = newRoomState()
		g.rooms[roomID] = rm
	}
	return rm
}

func (g *Gomoku) Init(roomID int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roomState(roomID)
}

func (g *Gomoku) Move(roomID, playerID, dx, dy int) (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rm := g.roomState(roomID)
	c := rm.cursorFor(playerID)

	nr := c.row + dy
	nc := c.col + dx
	if inside(nr, nc) {
		c.row = nr
		c.col = nc
	}
	return c.row, c.col
}

func (g *Gomoku) Place(roomID, row, col, color int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	rm := g.roomState(roomID)
	if !inside(row, col) {
		return false
	}
	if rm.occupied(row, col) {
		return false
	}
	if color != rm.nextColor {
		return false
	}

	rm.stones = append(rm.stones, Stone{Row: row, Col: col, Color: color})
	if rm.nextColor == Black {
		rm.nextColor = White
	} else {
		rm.nextColor = Black
	}
	return true
}

func (g *Gomoku) Reset(roomID int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rm := g.roomState(roomID)
	rm.stones = nil
	rm.nextColor = Black
	for _, c := range rm.cursors {
		c.row = center
		c.col = center
	}
}

func (g *Gomoku) AIMove(roomID, color int) (int, int) {
	g.mu.Lock()
	rm := g.roomState(roomID)
	b := boardFromStones(rm.stones, color)
	g.mu.Unlock()

	// Search runs on the copy, outside the lock.
	return b.bestMove()
}

func (g *Gomoku) Snapshot(roomID int) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	rm := g.roomState(roomID)
	st := State{
		Players:   make([]PlayerPos, 0, len(rm.cursors)),
		Stones:    make([]Stone, len(rm.stones)),
		NextColor: rm.nextColor,
	}
	for _, c := range rm.cursors {
		st.Players = append(st.Players, PlayerPos{ID: c.id, Row: c.row, Col: c.col})
	}
	copy(st.Stones, rm.stones)
	return st
}

func (g *Gomoku) Destroy(roomID int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, roomID)
}
