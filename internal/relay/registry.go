package relay

import "sync"

// Registry maps room passwords to their ordered member lists. Order is
// join order and defines seat assignment: first member plays black,
// second white, everyone after spectates. A room exists exactly while
// its member list is non-empty.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string][]string // password -> conn ids in join order
	byConn map[string]string   // conn id -> password
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string][]string),
		byConn: make(map[string]string),
	}
}

// Join appends conn to the room for password, creating the room on
// first join. Joining a room the connection is already in is a no-op.
// Returns the member list after the join.
func (r *Registry) Join(password, conn string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.rooms[password]
	for _, m := range members {
		if m == conn {
			return append([]string(nil), members...)
		}
	}
	members = append(members, conn)
	r.rooms[password] = members
	r.byConn[conn] = password
	return append([]string(nil), members...)
}

// Leave removes conn from whichever room contains it and deletes the
// room once empty. Returns the room password and the remaining members.
func (r *Registry) Leave(conn string) (password string, remaining []string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	password, ok = r.byConn[conn]
	if !ok {
		return "", nil, false
	}
	delete(r.byConn, conn)

	members := r.rooms[password]
	for i, m := range members {
		if m == conn {
			members = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(members) == 0 {
		delete(r.rooms, password)
		return password, nil, true
	}
	r.rooms[password] = members
	return password, append([]string(nil), members...), true
}

// Find is the reverse lookup used by every intent handler to recover
// room context from a connection.
func (r *Registry) Find(conn string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	password, ok := r.byConn[conn]
	return password, ok
}

// Members returns the current member list for a room, nil if the room
// does not exist.
func (r *Registry) Members(password string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[password]
	if !ok {
		return nil
	}
	return append([]string(nil), members...)
}
