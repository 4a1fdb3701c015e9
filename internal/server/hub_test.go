package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kataras/golog"

	"github.com/matsen/ppigraph/internal/notify"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	logger := golog.New()
	logger.SetOutput(io.Discard)

	hub := NewHub(logger)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, Message{Type: MessageNotification, Notification: &notify.Notification{Message: "hello"}})
	}))
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return hub, ts
}

func dialHub(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for hub.Len() != want {
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d clients, want %d", hub.Len(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_BroadcastDelivers(t *testing.T) {
	hub, ts := newTestHub(t)
	conn := dialHub(t, ts)
	waitForClients(t, hub, 1)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("reading first message: %v", err)
	}
	if first.Notification == nil || first.Notification.Message != "hello" {
		t.Errorf("first = %+v", first)
	}

	hub.Broadcast(Message{Type: MessageNotification, Notification: &notify.Notification{Message: "next"}})
	var next Message
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}
	if next.Notification == nil || next.Notification.Message != "next" {
		t.Errorf("next = %+v", next)
	}
}

func TestHub_SlowClientDoesNotBlockBroadcast(t *testing.T) {
	hub, ts := newTestHub(t)
	dialHub(t, ts) // never reads
	waitForClients(t, hub, 1)

	// Far more than the socket buffers and the send queue can hold.
	big := &notify.Notification{Message: strings.Repeat("x", 512<<10)}
	start := time.Now()
	for i := 0; i < 128; i++ {
		hub.Broadcast(Message{Type: MessageNotification, Notification: big})
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("broadcasts took %s with a stalled client", elapsed)
	}

	waitForClients(t, hub, 0)
}

func TestHub_Close(t *testing.T) {
	hub, ts := newTestHub(t)
	conn := dialHub(t, ts)
	waitForClients(t, hub, 1)

	hub.Close()
	if hub.Len() != 0 {
		t.Errorf("hub has %d clients after Close", hub.Len())
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
