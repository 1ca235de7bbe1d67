package relay

import (
	"sync"

	"gomoku_relay/internal/engine"
	"gomoku_relay/internal/logger"
)

// Cell is an explicit placement target. When a place intent carries no
// target, the requester's current cursor position is used instead.
type Cell struct {
	Row int
	Col int
}

// StateView is the per-member snapshot handed to a Sink after every
// successful mutation. Players carries every cursor in the room; Self
// and SelfPos let a gateway expose only the recipient's own position
// when its protocol calls for that.
type StateView struct {
	Room      string
	Self      string
	Members   []string
	Players   []engine.PlayerPos
	SelfPos   *Cell
	Board     []engine.Stone
	NextColor int
}

// Sink is the outbound half of a connection, owned by a transport
// gateway. Implementations must not block: a slow member is the
// gateway's problem, never the room's.
type Sink interface {
	SendJoined(room, conn string)
	SendState(view StateView)
}

// Coordinator is the session layer: it maps connections to rooms,
// translates client intents into engine calls and broadcasts the
// resulting state to every room member. Intents for one room are
// serialized by a per-room lock; distinct rooms never block each other.
type Coordinator struct {
	engine   engine.Engine
	registry *Registry

	mu    sync.Mutex
	sinks map[string]Sink
	locks map[string]*roomLock // per room password
}

// roomLock serializes intents for one room. The reference count covers
// holders and waiters, so an entry is only reclaimed once nobody can
// still reach its mutex.
type roomLock struct {
	mu   sync.Mutex
	refs int
}

func NewCoordinator(e engine.Engine) *Coordinator {
	return &Coordinator{
		engine:   e,
		registry: NewRegistry(),
		sinks:    make(map[string]Sink),
		locks:    make(map[string]*roomLock),
	}
}

// Connect registers the outbound sink for a new connection.
func (c *Coordinator) Connect(conn string, sink Sink) {
	c.mu.Lock()
	c.sinks[conn] = sink
	c.mu.Unlock()
	ConnectionsActive.Inc()
	logger.Debug("connection registered", "conn", conn)
}

// Disconnect removes the connection from its room. Survivors get a
// broadcast; an emptied room is torn down, engine state included.
func (c *Coordinator) Disconnect(conn string) {
	c.mu.Lock()
	_, known := c.sinks[conn]
	delete(c.sinks, conn)
	c.mu.Unlock()
	if known {
		ConnectionsActive.Dec()
	}

	password, ok := c.registry.Find(conn)
	if !ok {
		return
	}
	lk := c.lockRoom(password)
	defer c.unlockRoom(password, lk)

	left, remaining, ok := c.registry.Leave(conn)
	if !ok || left != password {
		return
	}
	logger.Info("member left", "room", password, "conn", conn, "remaining", len(remaining))
	if len(remaining) == 0 {
		c.engine.Destroy(RoomID(password))
		return
	}
	c.broadcast(password)
}

// Join moves the connection into the room for password. A connection
// already in a different room leaves it first; re-joining the same
// room is idempotent. The joiner's cursor is created before the first
// broadcast so every member always has a position to render.
func (c *Coordinator) Join(conn, password string) {
	IntentsTotal.WithLabelValues("join").Inc()

	if prev, ok := c.registry.Find(conn); ok && prev != password {
		c.leaveRoom(conn, prev)
	}

	lk := c.lockRoom(password)
	defer c.unlockRoom(password, lk)

	roomID := RoomID(password)
	c.engine.Init(roomID)
	members := c.registry.Join(password, conn)
	c.engine.Move(roomID, PlayerID(conn), 0, 0)

	logger.Info("member joined", "room", password, "conn", conn, "seat", len(members)-1)
	if sink := c.sink(conn); sink != nil {
		sink.SendJoined(password, conn)
	}
	c.broadcast(password)
}

// Move applies a relative cursor displacement. Broadcasts even when the
// displacement is degenerate: the issuing client still needs a snapshot.
func (c *Coordinator) Move(conn string, dx, dy int) {
	IntentsTotal.WithLabelValues("move").Inc()
	c.withRoom(conn, func(password string) {
		c.engine.Move(RoomID(password), PlayerID(conn), dx, dy)
		c.broadcast(password)
	})
}

// Place puts a stone for the requester's seat color. Seats beyond the
// first two are spectators and are silently ignored. With no explicit
// target the requester's cursor position is used. Broadcasts only when
// the engine accepts the placement.
func (c *Coordinator) Place(conn string, target *Cell) {
	IntentsTotal.WithLabelValues("place_stone").Inc()
	c.withRoom(conn, func(password string) {
		color, ok := c.seatColor(password, conn)
		if !ok {
			logger.Debug("place from spectator ignored", "room", password, "conn", conn)
			return
		}
		roomID := RoomID(password)
		row, col := 0, 0
		if target != nil {
			row, col = target.Row, target.Col
		} else {
			row, col = c.engine.Move(roomID, PlayerID(conn), 0, 0)
		}
		if c.engine.Place(roomID, row, col, color) {
			c.broadcast(password)
		}
	})
}

// Reset clears the board and always broadcasts.
func (c *Coordinator) Reset(conn string) {
	IntentsTotal.WithLabelValues("reset").Inc()
	c.withRoom(conn, func(password string) {
		c.engine.Reset(RoomID(password))
		c.broadcast(password)
	})
}

// AIMove asks the engine for a move on behalf of the color opposite to
// the requester's, then places it. Broadcasts only on success.
func (c *Coordinator) AIMove(conn string) {
	IntentsTotal.WithLabelValues("ai_move").Inc()
	c.withRoom(conn, func(password string) {
		members := c.registry.Members(password)
		myColor := engine.White
		if len(members) > 0 && members[0] == conn {
			myColor = engine.Black
		}
		aiColor := engine.Black
		if myColor == engine.Black {
			aiColor = engine.White
		}

		roomID := RoomID(password)
		row, col := c.engine.AIMove(roomID, aiColor)
		if c.engine.Place(roomID, row, col, aiColor) {
			c.broadcast(password)
		}
	})
}

// withRoom runs fn under the room lock of the connection's current
// room. Intents from unjoined connections are dropped, and a join/leave
// race is re-checked after the lock is held.
func (c *Coordinator) withRoom(conn string, fn func(password string)) {
	password, ok := c.registry.Find(conn)
	if !ok {
		return
	}
	lk := c.lockRoom(password)
	defer c.unlockRoom(password, lk)

	current, ok := c.registry.Find(conn)
	if !ok || current != password {
		return
	}
	fn(password)
}

// seatColor maps seat order to stone color: seat 0 plays black, seat 1
// white. Any other seat has no color.
func (c *Coordinator) seatColor(password, conn string) (int, bool) {
	for i, m := range c.registry.Members(password) {
		if m != conn {
			continue
		}
		switch i {
		case 0:
			return engine.Black, true
		case 1:
			return engine.White, true
		default:
			return 0, false
		}
	}
	return 0, false
}

// broadcast composes a personalized view per member and hands it to the
// member's sink. Must be called with the room lock held. Sends are
// fire-and-forget: a missing or slow sink never blocks the loop.
func (c *Coordinator) broadcast(password string) {
	members := c.registry.Members(password)
	if len(members) == 0 {
		return
	}
	snap := c.engine.Snapshot(RoomID(password))
	BroadcastsTotal.Inc()

	for _, member := range members {
		view := StateView{
			Room:      password,
			Self:      member,
			Members:   members,
			Players:   snap.Players,
			Board:     snap.Stones,
			NextColor: snap.NextColor,
		}
		pid := PlayerID(member)
		for _, p := range snap.Players {
			if p.ID == pid {
				view.SelfPos = &Cell{Row: p.Row, Col: p.Col}
				break
			}
		}
		if sink := c.sink(member); sink != nil {
			sink.SendState(view)
		}
	}
}

// leaveRoom is the Disconnect path without touching the sink, used when
// a live connection switches rooms.
func (c *Coordinator) leaveRoom(conn, password string) {
	lk := c.lockRoom(password)
	defer c.unlockRoom(password, lk)

	left, remaining, ok := c.registry.Leave(conn)
	if !ok || left != password {
		return
	}
	if len(remaining) == 0 {
		c.engine.Destroy(RoomID(password))
		return
	}
	c.broadcast(password)
}

func (c *Coordinator) sink(conn string) Sink {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sinks[conn]
}

// lockRoom acquires the serialization mutex for a room password,
// creating the entry on demand. Every acquisition must be paired with
// unlockRoom on the same entry.
func (c *Coordinator) lockRoom(password string) *roomLock {
	c.mu.Lock()
	lk, ok := c.locks[password]
	if !ok {
		lk = &roomLock{}
		c.locks[password] = lk
	}
	lk.refs++
	c.mu.Unlock()

	lk.mu.Lock()
	return lk
}

// unlockRoom releases the mutex and reclaims the map entry once no
// holder or waiter references it. A waiter always incremented refs
// before blocking, so a reclaimed entry can never resurface under a
// stale pointer.
func (c *Coordinator) unlockRoom(password string, lk *roomLock) {
	lk.mu.Unlock()

	c.mu.Lock()
	lk.refs--
	if lk.refs == 0 {
		delete(c.locks, password)
	}
	c.mu.Unlock()
}
