package ws

import (
	"encoding/json"

	"gomoku_relay/internal/engine"
	"gomoku_relay/internal/relay"
)

const (
	// client -> server
	MsgJoin       = "join"
	MsgMove       = "move"
	MsgPlaceStone = "place_stone"
	MsgReset      = "reset"
	MsgAIMove     = "ai_move"

	// server -> client
	MsgConnectionResponse = "connection_response"
	MsgJoined             = "joined"
	MsgRoomState          = "room_state"
)

// Envelope is the framing for every event in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client -> server payloads

type JoinPayload struct {
	Password string `json:"password"`
}

type MovePayload struct {
	Dx int `json:"dx"`
	Dy int `json:"dy"`
}

// PlaceStonePayload carries an optional explicit target. With either
// coordinate missing the server places at the sender's cursor.
type PlaceStonePayload struct {
	R *int `json:"r,omitempty"`
	C *int `json:"c,omitempty"`
}

// server -> client payloads

type ConnectionResponsePayload struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type JoinedPayload struct {
	Room string `json:"room"`
	ID   string `json:"id"`
}

type BoardStone struct {
	R     int    `json:"r"`
	C     int    `json:"c"`
	Color string `json:"color"`
}

// RoomStatePayload is the broadcast snapshot. Data holds only the
// recipient's own cursor, keyed by connection id.
type RoomStatePayload struct {
	Members       []string            `json:"members"`
	Data          map[string][][2]int `json:"data"`
	Board         []BoardStone        `json:"board"`
	CanPlaceColor int                 `json:"can_place_color,omitempty"`
}

func colorName(color int) string {
	if color == engine.Black {
		return "black"
	}
	return "white"
}

func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

// roomStateFrom converts a coordinator view into the wire payload.
func roomStateFrom(view relay.StateView) RoomStatePayload {
	payload := RoomStatePayload{
		Members:       view.Members,
		Data:          make(map[string][][2]int),
		Board:         make([]BoardStone, 0, len(view.Board)),
		CanPlaceColor: view.NextColor,
	}
	if view.SelfPos != nil {
		payload.Data[view.Self] = [][2]int{{view.SelfPos.Row, view.SelfPos.Col}}
	}
	for _, s := range view.Board {
		payload.Board = append(payload.Board, BoardStone{R: s.Row, C: s.Col, Color: colorName(s.Color)})
	}
	return payload
}
