// Smoke driver for the event protocol: joins two clients into one
// room, plays a stone each and prints the room_state frames. Run it
// against a live server started with `go run ./cmd/app`.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"gomoku_relay/internal/ws"
)

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws", port)
	dialer := websocket.DefaultDialer

	connA, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial A: %v", err)
	}
	defer connA.Close()

	connB, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	send(connA, ws.MsgJoin, ws.JoinPayload{Password: "smoke"})
	time.Sleep(200 * time.Millisecond)
	send(connB, ws.MsgJoin, ws.JoinPayload{Password: "smoke"})
	time.Sleep(200 * time.Millisecond)

	// A is seat 0 (black) and places at its cursor, B replies next to it.
	send(connA, ws.MsgPlaceStone, ws.PlaceStonePayload{})
	time.Sleep(200 * time.Millisecond)
	r, c := 7, 8
	send(connB, ws.MsgPlaceStone, ws.PlaceStonePayload{R: &r, C: &c})
	time.Sleep(200 * time.Millisecond)

	drain("A", connA)
	drain("B", connB)
}

func send(conn *websocket.Conn, msgType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("marshal %s: %v", msgType, err)
	}
	env := ws.Envelope{Type: msgType, Payload: raw}
	if err := conn.WriteJSON(env); err != nil {
		log.Fatalf("write %s: %v", msgType, err)
	}
}

func drain(name string, conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		fmt.Printf("%s <- %s\n", name, msg)
	}
}
