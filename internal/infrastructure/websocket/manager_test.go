package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

var testUpgrader = gorillaws.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func TestClientDisconnectRunsCloseHook(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	closed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		client := &Client{
			UserID:   "alice@example.com",
			BottleID: "b1",
			Conn:     conn,
			Send:     make(chan []byte, 1),
			OnClose:  func() { close(closed) },
		}
		m.Register <- client
		go client.WritePump()
		go client.ReadPump(m)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)

	// Dropping the connection must run the hook without waiting for any
	// further traffic.
	conn.Close()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close hook did not run after disconnect")
	}
}

func TestSendToRoomExcludesSender(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	alice := &Client{UserID: "alice@example.com", BottleID: "b1", Send: make(chan []byte, 1)}
	bob := &Client{UserID: "bob@example.com", BottleID: "b1", Send: make(chan []byte, 1)}
	other := &Client{UserID: "carol@example.com", BottleID: "b2", Send: make(chan []byte, 1)}

	m.Register <- alice
	m.Register <- bob
	m.Register <- other
	time.Sleep(10 * time.Millisecond)

	m.SendToRoom("b1", []byte("hello"), "alice@example.com")

	select {
	case msg := <-bob.Send:
		assert.Equal(t, "hello", string(msg))
	case <-time.After(time.Second):
		t.Fatal("room member did not receive the message")
	}

	assert.Empty(t, alice.Send)
	assert.Empty(t, other.Send)
}
