package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialEvents(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", wsURL, err)
	}
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d clients, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	s := New(Config{})
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dialEvents(t, srv.URL)
	defer conn.Close()
	waitForClients(t, s.Hub(), 1)

	sent := TriggerEvent{Cell: 4, Voice: "kick", Brightness: 187.5, Timestamp: 1700000000000}
	s.Hub().Broadcast(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read broadcast: %v", err)
	}

	var got TriggerEvent
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("failed to decode broadcast: %v", err)
	}
	if got != sent {
		t.Errorf("received %+v, want %+v", got, sent)
	}
}

func TestHub_MultipleClients(t *testing.T) {
	s := New(Config{})
	srv := httptest.NewServer(s)
	defer srv.Close()

	first := dialEvents(t, srv.URL)
	defer first.Close()
	second := dialEvents(t, srv.URL)
	defer second.Close()
	waitForClients(t, s.Hub(), 2)

	s.Hub().Broadcast(TriggerEvent{Cell: 0, Voice: "hihat"})

	for i, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("client %d failed to read broadcast: %v", i, err)
		}
		var got TriggerEvent
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("client %d failed to decode broadcast: %v", i, err)
		}
		if got.Voice != "hihat" {
			t.Errorf("client %d voice = %q, want %q", i, got.Voice, "hihat")
		}
	}
}

func TestHub_DisconnectRemovesClient(t *testing.T) {
	s := New(Config{})
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dialEvents(t, srv.URL)
	waitForClients(t, s.Hub(), 1)

	conn.Close()
	waitForClients(t, s.Hub(), 0)

	// Broadcasting into an empty hub must not panic.
	s.Hub().Broadcast(TriggerEvent{Cell: 8, Voice: "synth"})
}
