package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"gomoku_relay/internal/logger"
	"gomoku_relay/internal/relay"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	readLimit = 4096
	sendDepth = 64
)

// Client owns one websocket connection: a read pump feeding intents to
// the coordinator and a write pump draining the Send channel. It is the
// relay.Sink for its connection id.
type Client struct {
	ID    string
	Conn  *websocket.Conn
	Send  chan []byte
	done  chan struct{}
	coord *relay.Coordinator
}

func NewClient(id string, conn *websocket.Conn, coord *relay.Coordinator) *Client {
	return &Client{
		ID:    id,
		Conn:  conn,
		Send:  make(chan []byte, sendDepth),
		done:  make(chan struct{}),
		coord: coord,
	}
}

// Run registers the client with the coordinator, acknowledges the
// connection and blocks reading intents until the peer goes away.
func (c *Client) Run() {
	go c.writePump()

	c.coord.Connect(c.ID, c)
	c.queue(MsgConnectionResponse, ConnectionResponsePayload{Status: "connected", ID: c.ID})

	c.readPump()
}

func (c *Client) readPump() {
	// The Send channel stays open: a broadcast may still hold this sink
	// while the connection tears down, and a late queue is harmless.
	// Closing done stops the write pump without waiting for its next
	// write or ping to fail.
	defer func() {
		c.coord.Disconnect(c.ID)
		c.Conn.Close()
		close(c.done)
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			logger.Debug("read closed", "conn", c.ID, "err", err)
			return
		}
		c.handle(msg)
	}
}

// handle decodes one inbound envelope. Anything malformed is dropped
// without a reply and without closing the connection.
func (c *Client) handle(msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		logger.Debug("dropping malformed frame", "conn", c.ID, "err", err)
		return
	}

	switch env.Type {
	case MsgJoin:
		var p JoinPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.Password == "" {
			logger.Debug("dropping malformed join", "conn", c.ID)
			return
		}
		c.coord.Join(c.ID, p.Password)

	case MsgMove:
		var p MovePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			logger.Debug("dropping malformed move", "conn", c.ID)
			return
		}
		c.coord.Move(c.ID, p.Dx, p.Dy)

	case MsgPlaceStone:
		var p PlaceStonePayload
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				logger.Debug("dropping malformed place_stone", "conn", c.ID)
				return
			}
		}
		var target *relay.Cell
		if p.R != nil && p.C != nil {
			target = &relay.Cell{Row: *p.R, Col: *p.C}
		}
		c.coord.Place(c.ID, target)

	case MsgReset:
		c.coord.Reset(c.ID)

	case MsgAIMove:
		c.coord.AIMove(c.ID)

	default:
		logger.Debug("dropping unknown event", "conn", c.ID, "type", env.Type)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("write failed", "conn", c.ID, "err", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// queue marshals and enqueues an event, dropping it if the peer cannot
// keep up. Broadcast delivery is fire-and-forget per recipient.
func (c *Client) queue(msgType string, payload any) {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		logger.Error("marshal outbound event", "type", msgType, "err", err)
		return
	}
	select {
	case c.Send <- data:
	default:
		relay.SendsDropped.WithLabelValues("ws").Inc()
		logger.Warn("send buffer full, dropping event", "conn", c.ID, "type", msgType)
	}
}

// SendJoined implements relay.Sink.
func (c *Client) SendJoined(room, conn string) {
	c.queue(MsgJoined, JoinedPayload{Room: room, ID: conn})
}

// SendState implements relay.Sink.
func (c *Client) SendState(view relay.StateView) {
	c.queue(MsgRoomState, roomStateFrom(view))
}
