package relay

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomoku_relay/internal/engine"
)

// fakeSink records everything the coordinator pushes at a connection.
type fakeSink struct {
	joined []string
	states []StateView
}

func (f *fakeSink) SendJoined(room, conn string) { f.joined = append(f.joined, room) }
func (f *fakeSink) SendState(view StateView)     { f.states = append(f.states, view) }

func (f *fakeSink) last(t *testing.T) StateView {
	t.Helper()
	require.NotEmpty(t, f.states)
	return f.states[len(f.states)-1]
}

func newHarness() *Coordinator {
	return NewCoordinator(engine.NewGomoku())
}

func connect(c *Coordinator, conn string) *fakeSink {
	s := &fakeSink{}
	c.Connect(conn, s)
	return s
}

func TestJoinAcksAndBroadcasts(t *testing.T) {
	c := newHarness()
	a := connect(c, "a")

	c.Join("a", "p1")

	assert.Equal(t, []string{"p1"}, a.joined)
	view := a.last(t)
	assert.Equal(t, "p1", view.Room)
	assert.Equal(t, "a", view.Self)
	assert.Equal(t, []string{"a"}, view.Members)
	require.NotNil(t, view.SelfPos)
	assert.Equal(t, Cell{Row: 7, Col: 7}, *view.SelfPos)
	assert.Empty(t, view.Board)
	assert.Equal(t, engine.Black, view.NextColor)
}

func TestJoinBroadcastReachesEveryMember(t *testing.T) {
	c := newHarness()
	a := connect(c, "a")
	b := connect(c, "b")

	c.Join("a", "p1")
	c.Join("b", "p1")

	assert.Equal(t, []string{"a", "b"}, a.last(t).Members)
	assert.Equal(t, []string{"a", "b"}, b.last(t).Members)
	assert.Equal(t, "b", b.last(t).Self)
}

func TestMoveBroadcastsEvenWhenClamped(t *testing.T) {
	c := newHarness()
	a := connect(c, "a")
	c.Join("a", "p1")

	before := len(a.states)
	c.Move("a", 0, -20) // clamps at the top edge
	require.Len(t, a.states, before+1)
	assert.Equal(t, Cell{Row: 7, Col: 7}, *a.last(t).SelfPos)

	c.Move("a", 2, 1)
	assert.Equal(t, Cell{Row: 8, Col: 9}, *a.last(t).SelfPos)
}

func TestPlaceAtCursorThenOccupiedThenFresh(t *testing.T) {
	c := newHarness()
	a := connect(c, "a")
	b := connect(c, "b")
	c.Join("a", "p1")
	c.Join("b", "p1")

	// Seat 0 places black at its own cursor.
	c.Place("a", nil)
	view := b.last(t)
	require.Len(t, view.Board, 1)
	assert.Equal(t, engine.Stone{Row: 7, Col: 7, Color: engine.Black}, view.Board[0])
	assert.Equal(t, engine.White, view.NextColor)

	// Occupied cell: no state goes out.
	before := len(b.states)
	c.Place("b", &Cell{Row: 7, Col: 7})
	assert.Len(t, b.states, before)

	c.Place("b", &Cell{Row: 7, Col: 8})
	view = a.last(t)
	require.Len(t, view.Board, 2)
	assert.Equal(t, engine.White, view.Board[1].Color)
	assert.Equal(t, engine.Black, view.NextColor)
}

func TestSpectatorPlaceIsIgnored(t *testing.T) {
	c := newHarness()
	connect(c, "a")
	connect(c, "b")
	watcher := connect(c, "c")
	c.Join("a", "p1")
	c.Join("b", "p1")
	c.Join("c", "p1")

	before := len(watcher.states)
	c.Place("c", &Cell{Row: 3, Col: 3})
	assert.Len(t, watcher.states, before)
}

func TestResetAlwaysBroadcasts(t *testing.T) {
	c := newHarness()
	a := connect(c, "a")
	c.Join("a", "p1")
	c.Place("a", nil)

	c.Reset("a")
	view := a.last(t)
	assert.Empty(t, view.Board)
	assert.Equal(t, engine.Black, view.NextColor)
	assert.Equal(t, Cell{Row: 7, Col: 7}, *view.SelfPos)

	// Resetting an already empty board still produces a snapshot.
	before := len(a.states)
	c.Reset("a")
	assert.Len(t, a.states, before+1)
}

func TestAIMovePlaysForTheOpponent(t *testing.T) {
	c := newHarness()
	a := connect(c, "a")
	c.Join("a", "p1")

	// Seat 0 is black; after its stone the engine expects white, which
	// is exactly the color the assistant plays on seat 0's behalf.
	c.Place("a", nil)
	c.AIMove("a")

	view := a.last(t)
	require.Len(t, view.Board, 2)
	assert.Equal(t, engine.White, view.Board[1].Color)
	assert.Equal(t, engine.Black, view.NextColor)
}

func TestAIMoveOutOfTurnDoesNotBroadcast(t *testing.T) {
	c := newHarness()
	a := connect(c, "a")
	c.Join("a", "p1")

	// Empty board, black to play. Seat 0's assistant plays white, so the
	// placement is rejected and nothing goes out.
	before := len(a.states)
	c.AIMove("a")
	assert.Len(t, a.states, before)
}

func TestIntentsFromUnjoinedConnAreDropped(t *testing.T) {
	c := newHarness()
	s := connect(c, "loner")

	c.Move("loner", 1, 1)
	c.Place("loner", nil)
	c.Reset("loner")
	c.AIMove("loner")
	assert.Empty(t, s.states)
}

func TestDisconnectNotifiesSurvivors(t *testing.T) {
	c := newHarness()
	connect(c, "a")
	b := connect(c, "b")
	c.Join("a", "p1")
	c.Join("b", "p1")

	c.Disconnect("a")
	view := b.last(t)
	assert.Equal(t, []string{"b"}, view.Members)

	// The survivor keeps full control of the room.
	c.Reset("b")
	assert.Equal(t, []string{"b"}, b.last(t).Members)
}

func TestEmptiedRoomStartsFresh(t *testing.T) {
	c := newHarness()
	connect(c, "a")
	c.Join("a", "p1")
	c.Place("a", nil)
	c.Disconnect("a")

	a2 := connect(c, "a2")
	c.Join("a2", "p1")
	view := a2.last(t)
	assert.Empty(t, view.Board)
	assert.Equal(t, engine.Black, view.NextColor)
}

func TestSwitchingRoomsLeavesThePreviousOne(t *testing.T) {
	c := newHarness()
	a := connect(c, "a")
	b := connect(c, "b")
	c.Join("a", "p1")
	c.Join("b", "p1")

	c.Join("b", "p2")

	assert.Equal(t, []string{"a"}, a.last(t).Members)
	assert.Equal(t, []string{"b"}, b.last(t).Members)
	assert.Equal(t, "p2", b.last(t).Room)
}

func TestRoomLocksAreReclaimed(t *testing.T) {
	c := newHarness()
	connect(c, "a")

	for i := 0; i < 20; i++ {
		c.Join("a", fmt.Sprintf("pw-%d", i))
	}
	c.Disconnect("a")

	c.mu.Lock()
	remaining := len(c.locks)
	c.mu.Unlock()
	assert.Zero(t, remaining)
}

func TestRejoinSameRoomIsIdempotent(t *testing.T) {
	c := newHarness()
	a := connect(c, "a")
	c.Join("a", "p1")
	c.Place("a", nil)

	c.Join("a", "p1")
	view := a.last(t)
	assert.Equal(t, []string{"a"}, view.Members)
	assert.Len(t, view.Board, 1)
}
