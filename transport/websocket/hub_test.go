package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/landlord/game/engine"
)

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.games == nil {
		t.Error("Hub games map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialized")
	}
	if hub.logger == nil {
		t.Error("Hub should default to a nop logger")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)

	client := &Client{
		hub:    hub,
		gameID: "test-game",
		send:   make(chan []byte, 256),
	}

	hub.registerClient(client)

	if !hub.games["test-game"][client] {
		t.Error("Client was not registered in game")
	}
	if len(hub.games["test-game"]) != 1 {
		t.Errorf("Expected 1 client in game, got %d", len(hub.games["test-game"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)

	client := &Client{
		hub:    hub,
		gameID: "test-game",
		send:   make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.games["test-game"]; exists {
		t.Error("Game should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInGame(t *testing.T) {
	hub := NewHub(nil)
	gameID := "multi-client-game"

	client1 := &Client{hub: hub, gameID: gameID, send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, gameID: gameID, send: make(chan []byte, 256)}
	other := &Client{hub: hub, gameID: "other", send: make(chan []byte, 256)}

	hub.registerClient(client1)
	hub.registerClient(client2)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{GameID: gameID, Event: "ping"})

	for _, c := range []*Client{client1, client2} {
		select {
		case <-c.send:
		default:
			t.Error("Expected every client of the game to receive the message")
		}
	}
	select {
	case <-other.send:
		t.Error("Clients of other games should not receive the message")
	default:
	}

	hub.unregisterClient(client1)
	if len(hub.games[gameID]) != 1 || !hub.games[gameID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	slow := &Client{hub: hub, gameID: "g", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{GameID: "g", Event: "ping"})

	if _, exists := hub.games["g"]; exists {
		t.Error("Slow client should be unregistered")
	}
}

func TestHubGameUpdated(t *testing.T) {
	hub := NewHub(nil)
	game := &engine.Game{ID: "g1", Name: "Test", Turn: 7}

	hub.GameUpdated(game)

	select {
	case message := <-hub.broadcast:
		if message.GameID != "g1" || message.Event != EventGameUpdate {
			t.Errorf("Unexpected message %+v", message)
		}
		if message.Game != game {
			t.Error("Expected the snapshot to be carried")
		}
	default:
		t.Fatal("GameUpdated did not queue a message")
	}
}

func TestHubGameUpdatedNeverBlocks(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})

	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.GameUpdated(&engine.Game{ID: "g"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("GameUpdated blocked without a running hub")
	}
	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected a full queue of %d, got %d", broadcastBuffer, len(hub.broadcast))
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub(nil)

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.GameID != "event-test" {
			t.Errorf("Expected game 'event-test', got %s", message.GameID)
		}
		if message.Event != "custom-event" {
			t.Errorf("Expected event 'custom-event', got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message received within timeout")
	}
}

func dialHub(t *testing.T, hub *Hub, gameID string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("game"))
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?game=" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketReceivesGameUpdates(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialHub(t, hub, "msg-test")

	// registration is asynchronous; keep publishing until a frame arrives
	game := &engine.Game{ID: "msg-test", Name: "Board", Turn: 3}
	received := make(chan []byte, 1)
	go func() {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err == nil {
			received <- data
		}
		close(received)
	}()

	var data []byte
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
wait:
	for {
		select {
		case d, ok := <-received:
			if !ok {
				t.Fatal("Failed to read WebSocket message")
			}
			data = d
			break wait
		case <-ticker.C:
			hub.GameUpdated(game)
		}
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.GameID != "msg-test" || message.Event != EventGameUpdate {
		t.Errorf("Unexpected message %+v", message)
	}
	if message.Game == nil || message.Game.Turn != 3 || message.Game.Name != "Board" {
		t.Errorf("Game not correctly received: %+v", message.Game)
	}
}

func TestHubRunStopsAndClosesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	conn := dialHub(t, hub, "stop-test")
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed")
	}
}
