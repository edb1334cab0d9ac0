package statushub

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skywardcontrols/aic-attitude/internal/controller"
)

func TestBroadcastDeliversToConnectedClient(t *testing.T) {
	h := New()
	go h.Run()

	server := httptest.NewServer(h)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the join a moment to land before broadcasting.
	time.Sleep(20 * time.Millisecond)

	h.Broadcast(controller.Status{Torque: [3]float32{0.01, -0.02, 0}, InvalidInput: 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(msg), "InvalidInput") {
		t.Fatalf("payload missing expected field: %s", msg)
	}
}

func TestBroadcastNeverBlocksWithoutClients(t *testing.T) {
	h := New()
	done := make(chan struct{})
	go func() {
		h.Broadcast(controller.Status{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked with no Run loop and no clients")
	}
}
