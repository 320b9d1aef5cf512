package history

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialSource(t *testing.T, src *WebSocketSource) (*websocket.Conn, func()) {
	t.Helper()

	ts := httptest.NewServer(src)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		ts.Close()
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for src.Connections() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("server never registered the connection")
		}
		time.Sleep(5 * time.Millisecond)
	}

	return conn, func() {
		conn.Close()
		src.Close()
		ts.Close()
	}
}

func TestWebSocketSourceNotifiesListeners(t *testing.T) {
	src := NewWebSocketSource(nil)

	got := make(chan Location, 4)
	src.Listen(func(loc Location) { got <- loc })

	conn, cleanup := dialSource(t, src)
	defer cleanup()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"pathname":"/beans/rice","search":"?plantains=yes"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Garbage and binary frames are skipped.
	conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
	conn.WriteMessage(websocket.BinaryMessage, []byte(`{"pathname":"/bin"}`))
	conn.WriteMessage(websocket.TextMessage, []byte(`{"search":"?q=1"}`))

	select {
	case loc := <-got:
		if loc.URL() != "/beans/rice?plantains=yes" {
			t.Errorf("first location = %q", loc.URL())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for navigation")
	}

	select {
	case loc := <-got:
		if loc.URL() != "/?q=1" {
			t.Errorf("second location = %q, want /?q=1", loc.URL())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for second navigation")
	}
}

func TestWebSocketSourceBroadcast(t *testing.T) {
	src := NewWebSocketSource(nil)
	conn, cleanup := dialSource(t, src)
	defer cleanup()

	if err := src.Broadcast(map[string]string{"path": "/x"}); err != nil {
		t.Fatalf("Broadcast() error: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal(msg, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["path"] != "/x" {
		t.Errorf("payload = %v", payload)
	}
}

func TestWebSocketSourceClose(t *testing.T) {
	src := NewWebSocketSource(nil)
	src.Close()

	if err := src.Broadcast("x"); err != ErrSourceClosed {
		t.Errorf("Broadcast() after Close = %v, want ErrSourceClosed", err)
	}

	rec := httptest.NewRecorder()
	src.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
