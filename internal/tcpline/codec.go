package tcpline

import (
	"fmt"
	"strconv"
	"strings"

	"gomoku_relay/internal/relay"
)

// command is a decoded inbound line. The legacy client speaks exactly
// two verbs: "MOVE <dy> <dx>" and "PLACE" (target implied by cursor).
type command struct {
	verb string
	dy   int
	dx   int
}

// parseLine decodes one newline-delimited command. Unknown verbs and
// unparseable fields return ok=false and are dropped by the caller.
func parseLine(line string) (command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, false
	}
	switch fields[0] {
	case "MOVE":
		if len(fields) != 3 {
			return command{}, false
		}
		dy, err1 := strconv.Atoi(fields[1])
		dx, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			return command{}, false
		}
		return command{verb: "MOVE", dy: dy, dx: dx}, true
	case "PLACE":
		return command{verb: "PLACE"}, true
	}
	return command{}, false
}

// encodeState renders the push frame:
//
//	STATE PLAYERS <n> <id>:<row>:<col> ... STONES <m> <row>:<col>:<color> ...\n
//
// Unlike the event protocol, the legacy frame carries every player's
// cursor; the rendering client draws all of them.
func encodeState(view relay.StateView) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "STATE PLAYERS %d", len(view.Players))
	for _, p := range view.Players {
		fmt.Fprintf(&b, " %d:%d:%d", p.ID, p.Row, p.Col)
	}
	fmt.Fprintf(&b, " STONES %d", len(view.Board))
	for _, s := range view.Board {
		fmt.Fprintf(&b, " %d:%d:%d", s.Row, s.Col, s.Color)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}
