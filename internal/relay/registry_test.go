package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPreservesArrivalOrder(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, []string{"a"}, r.Join("p1", "a"))
	assert.Equal(t, []string{"a", "b"}, r.Join("p1", "b"))
	assert.Equal(t, []string{"a", "b", "c"}, r.Join("p1", "c"))
}

func TestJoinIsIdempotent(t *testing.T) {
	r := NewRegistry()

	r.Join("p1", "a")
	r.Join("p1", "b")
	assert.Equal(t, []string{"a", "b"}, r.Join("p1", "a"))
}

func TestFind(t *testing.T) {
	r := NewRegistry()
	r.Join("p1", "a")

	pw, ok := r.Find("a")
	require.True(t, ok)
	assert.Equal(t, "p1", pw)

	_, ok = r.Find("ghost")
	assert.False(t, ok)
}

func TestLeaveReturnsSurvivors(t *testing.T) {
	r := NewRegistry()
	r.Join("p1", "a")
	r.Join("p1", "b")

	pw, remaining, ok := r.Leave("a")
	require.True(t, ok)
	assert.Equal(t, "p1", pw)
	assert.Equal(t, []string{"b"}, remaining)

	_, ok = r.Find("a")
	assert.False(t, ok)
}

func TestLeaveLastMemberRemovesRoom(t *testing.T) {
	r := NewRegistry()
	r.Join("p1", "a")

	_, remaining, ok := r.Leave("a")
	require.True(t, ok)
	assert.Empty(t, remaining)
	assert.Nil(t, r.Members("p1"))
}

func TestLeaveUnknownConn(t *testing.T) {
	r := NewRegistry()

	_, _, ok := r.Leave("ghost")
	assert.False(t, ok)
}

func TestMembersReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Join("p1", "a")
	r.Join("p1", "b")

	m := r.Members("p1")
	m[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, r.Members("p1"))
}
