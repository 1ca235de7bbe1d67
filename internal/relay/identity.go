package relay

import "hash/fnv"

// idRange bounds the derived numeric ids. Collisions inside the range
// are accepted: two passwords that reduce to the same value alias the
// same engine room. Connection handles themselves are uuids and never
// alias, only the numeric ids handed to the engine can.
const idRange = 10000

func reduce(s string) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % idRange)
}

// RoomID derives the engine room id from a room password.
func RoomID(password string) int { return reduce(password) }

// PlayerID derives the engine player id from a connection handle.
func PlayerID(conn string) int { return reduce(conn) }
