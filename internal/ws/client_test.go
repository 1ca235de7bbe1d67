package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"gomoku_relay/internal/engine"
	"gomoku_relay/internal/relay"
)

// wsConnPair dials a throwaway upgrade server and hands back both ends
// of one live websocket connection.
func wsConnPair(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()
	upgraded := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		upgraded <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	dialer, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { dialer.Close() })

	select {
	case conn := <-upgraded:
		t.Cleanup(func() { conn.Close() })
		return conn, dialer
	case <-time.After(time.Second):
		t.Fatal("no upgraded connection")
		return nil, nil
	}
}

func TestWritePumpExitsWhenReaderFinishes(t *testing.T) {
	serverConn, _ := wsConnPair(t)
	c := NewClient("conn-1", serverConn, relay.NewCoordinator(engine.NewGomoku()))

	stopped := make(chan struct{})
	go func() {
		c.writePump()
		close(stopped)
	}()

	// The read pump closes done on its way out; the write pump must
	// exit on that signal, not on its next ping failure.
	close(c.done)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("write pump kept running after the read side finished")
	}
}
