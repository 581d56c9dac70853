package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestPublishWithoutClients(t *testing.T) {
	hub := NewWebSocketHub()
	defer hub.Stop()

	// Broadcast channel is buffered; publishing with no reader must not block.
	for i := 0; i < 10; i++ {
		hub.Publish(PredictionEvent, map[string]string{"label": "high"})
	}
}

func TestHeartbeat(t *testing.T) {
	hub := NewWebSocketHub()
	hub.heartbeatEvery = 50 * time.Millisecond
	go hub.Start()
	defer hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var message Message
	if err := json.Unmarshal(payload, &message); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if message.Type != Heartbeat {
		t.Fatalf("expected type %q, got %q", Heartbeat, message.Type)
	}
	var data map[string]int
	if err := json.Unmarshal(message.Data, &data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data["clients"] != 1 {
		t.Fatalf("expected 1 client, got %d", data["clients"])
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	hub := NewWebSocketHub()
	go hub.Start()
	defer hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	// Registration goes through the hub loop; give it a moment.
	time.Sleep(50 * time.Millisecond)
	hub.Publish(TrainingEvent, map[string]float64{"accuracy": 1})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var message Message
	if err := json.Unmarshal(payload, &message); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if message.Type != TrainingEvent {
		t.Fatalf("expected type %q, got %q", TrainingEvent, message.Type)
	}
	var data map[string]float64
	if err := json.Unmarshal(message.Data, &data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data["accuracy"] != 1 {
		t.Fatalf("unexpected payload: %v", data)
	}
}
