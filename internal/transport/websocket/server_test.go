package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startTestHub(t *testing.T, userID int64) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, userID)
	}))
	t.Cleanup(server.Close)
	return hub, server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + server.URL[4:]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub, server := startTestHub(t, 1)

	conn := dial(t, server)

	time.Sleep(100 * time.Millisecond)

	hub.mu.RLock()
	connections, exists := hub.connections[1]
	hub.mu.RUnlock()
	if !exists {
		t.Fatal("connection should be registered")
	}
	if len(connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(connections))
	}

	conn.Close()
	time.Sleep(100 * time.Millisecond)

	hub.mu.RLock()
	_, exists = hub.connections[1]
	hub.mu.RUnlock()
	if exists {
		t.Fatal("connection should be unregistered after close")
	}
}

func TestHubBroadcastDeliversCaseEvent(t *testing.T) {
	hub, server := startTestHub(t, 1)

	conn := dial(t, server)
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	hub.Broadcast(1, &Message{
		Type:    "case_escalated",
		Channel: "case_updates#1",
		Data:    map[string]interface{}{"case_number": "CASE-2026-00001"},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Message
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != "case_escalated" {
		t.Fatalf("type = %q, want case_escalated", got.Type)
	}
	if got.UserID != 1 {
		t.Fatalf("user_id = %d, want 1", got.UserID)
	}
}

func TestHubBroadcastSkipsOtherUsers(t *testing.T) {
	hub, server := startTestHub(t, 2)

	conn := dial(t, server)
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	// Message for user 1 must not reach user 2's connection.
	hub.Broadcast(1, &Message{Type: "note_added"})

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var got Message
	if err := conn.ReadJSON(&got); err == nil {
		t.Fatalf("unexpected message delivered: %+v", got)
	}
}
