package wsconn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// mockWSServer creates a test WebSocket server driven by handler.
func mockWSServer(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Logf("websocket accept error: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		if handler != nil {
			handler(conn)
		}
	}))
}

func echoHandler(conn *websocket.Conn) {
	ctx := context.Background()
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if err := conn.Write(ctx, msgType, data); err != nil {
			return
		}
	}
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestClient_ConnectAndClose(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	cfg := DefaultConfig(wsURL(server))
	cfg.PingInterval = 0

	client := New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if client.State() != StateConnected {
		t.Errorf("state = %v, want %v", client.State(), StateConnected)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if client.State() != StateDisconnected {
		t.Errorf("state after close = %v", client.State())
	}

	// Connect after Close is refused.
	if err := client.Connect(ctx); err == nil {
		t.Error("expected error connecting a closed client")
	}
}

func TestClient_ConnectFailure(t *testing.T) {
	cfg := DefaultConfig("ws://127.0.0.1:1") // nothing listens here
	client := New(cfg)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err == nil {
		t.Fatal("expected dial error")
	}
	if client.State() != StateDisconnected {
		t.Errorf("state = %v, want %v", client.State(), StateDisconnected)
	}
}

func TestClient_SendReceive(t *testing.T) {
	server := mockWSServer(t, echoHandler)
	defer server.Close()

	cfg := DefaultConfig(wsURL(server))
	cfg.PingInterval = 0

	client := New(cfg)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	payload := []byte(`{"type":"subscribe"}`)
	if err := client.Send(ctx, payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-client.Messages():
		if string(got) != string(payload) {
			t.Errorf("echoed = %s, want %s", got, payload)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no message received")
	}
}

func TestClient_SendBeforeConnect(t *testing.T) {
	client := New(DefaultConfig("ws://example.invalid"))
	if err := client.Send(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error before connect")
	}
}

func TestClient_OnConnectReplaysSubscriptions(t *testing.T) {
	received := make(chan []byte, 1)
	server := mockWSServer(t, func(conn *websocket.Conn) {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			return
		}
		received <- data
		time.Sleep(time.Second)
	})
	defer server.Close()

	cfg := DefaultConfig(wsURL(server))
	cfg.PingInterval = 0
	cfg.OnConnect = func(ctx context.Context, c *Client) error {
		return c.Send(ctx, []byte("subscribe"))
	}

	client := New(cfg)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	select {
	case got := <-received:
		if string(got) != "subscribe" {
			t.Errorf("server received %s", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("subscription not replayed on connect")
	}
}
