package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"arguematch/internal/debate"
	"arguematch/services"
)

func newTestServer(t *testing.T, opts services.Options) (*httptest.Server, *services.Coordinator, *Hub) {
	t.Helper()
	// keep the debate timer from firing during the test
	opts.Timer = services.DefaultTimerConfig()
	opts.Timer.SettleDelay = time.Hour

	hub := NewHub()
	coordinator := services.NewCoordinator(hub, opts)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", NewHandler(hub, coordinator, nil).ServeWS)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, coordinator, hub
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(debate.ClientMessage{Type: msgType, Payload: raw}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// readUntil skips events until one of the wanted type arrives
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) *debate.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var ev debate.Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("waiting for %s: %v", msgType, err)
		}
		if ev.Type == msgType {
			return &ev
		}
	}
}

func join(t *testing.T, conn *websocket.Conn, name string) {
	t.Helper()
	sendMessage(t, conn, debate.TypeJoin, debate.JoinPayload{DisplayName: name, AffiliationLabel: "Independent"})
	readUntil(t, conn, debate.TypeJoined)
}

func TestWebsocketMatchRelayAndDisconnect(t *testing.T) {
	server, coordinator, _ := newTestServer(t, services.Options{})

	alice := dial(t, server)
	bob := dial(t, server)
	join(t, alice, "Alice")
	join(t, bob, "Bob")

	sendMessage(t, alice, debate.TypeRequestMatch, struct{}{})
	var status debate.StatusPayload
	json.Unmarshal(readUntil(t, alice, debate.TypeStatus).Payload, &status)
	if status.Status != debate.StatusWaiting {
		t.Fatalf("Expected waiting, got %s", status.Status)
	}

	sendMessage(t, bob, debate.TypeRequestMatch, struct{}{})
	var found debate.MatchFoundPayload
	json.Unmarshal(readUntil(t, alice, debate.TypeMatchFound).Payload, &found)
	if found.Partner.DisplayName != "Bob" || found.Slot != "first" {
		t.Errorf("Unexpected match-found for Alice %+v", found)
	}
	readUntil(t, bob, debate.TypeMatchFound)

	offer := json.RawMessage(`{"sdp":"v=0"}`)
	if err := alice.WriteJSON(debate.ClientMessage{Type: debate.TypeOffer, Payload: offer}); err != nil {
		t.Fatal(err)
	}
	relayed := readUntil(t, bob, debate.TypeOffer)
	if string(relayed.Payload) != string(offer) || relayed.From == nil || relayed.From.DisplayName != "Alice" {
		t.Errorf("Unexpected relayed offer %+v", relayed)
	}

	alice.Close()
	var gone debate.PartnerDisconnectedPayload
	json.Unmarshal(readUntil(t, bob, debate.TypePartnerDisconnected).Payload, &gone)
	if gone.RoomID != found.RoomID || gone.DisplayName != "Alice" {
		t.Errorf("Unexpected partner-disconnected %+v", gone)
	}

	deadline := time.Now().Add(2 * time.Second)
	for coordinator.Stats().Connections != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if stats := coordinator.Stats(); stats.Connections != 1 || stats.ActiveRooms != 0 {
		t.Errorf("Unexpected stats after disconnect %+v", stats)
	}
}

func TestWebsocketProtocolErrors(t *testing.T) {
	server, _, _ := newTestServer(t, services.Options{})
	conn := dial(t, server)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	var e debate.ErrorPayload
	json.Unmarshal(readUntil(t, conn, debate.TypeError).Payload, &e)
	if e.Code != "invalid_payload" {
		t.Errorf("Expected invalid_payload, got %+v", e)
	}

	sendMessage(t, conn, debate.TypeRequestMatch, struct{}{})
	json.Unmarshal(readUntil(t, conn, debate.TypeError).Payload, &e)
	if e.Code != "not_joined" {
		t.Errorf("Expected not_joined, got %+v", e)
	}

	sendMessage(t, conn, "dance", struct{}{})
	json.Unmarshal(readUntil(t, conn, debate.TypeError).Payload, &e)
	if e.Code != "invalid_payload" {
		t.Errorf("Expected invalid_payload for unknown type, got %+v", e)
	}

	// the connection survives protocol errors
	join(t, conn, "Carol")
	sendMessage(t, conn, debate.TypeActiveUsers, struct{}{})
	var stats services.Stats
	json.Unmarshal(readUntil(t, conn, debate.TypeActiveUsers).Payload, &stats)
	if stats.Connections != 1 {
		t.Errorf("Expected one connection, got %+v", stats)
	}
}
