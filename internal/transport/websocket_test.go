package transport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/synheart/synheart-monitor/internal/encoding"
	"github.com/synheart/synheart-monitor/internal/models"
)

type echoHandler struct {
	got chan string
}

func (h *echoHandler) HandleCommand(msg []byte) []byte {
	h.got <- string(msg)
	return []byte(`{"ok":true}`)
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func TestWebSocketServer_BroadcastAndCommands(t *testing.T) {
	handler := &echoHandler{got: make(chan string, 1)}
	server := NewWebSocketServer("127.0.0.1", 19890, encoding.NewJSONEncoder(), handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go server.Start(ctx)
	time.Sleep(100 * time.Millisecond)

	conn := dial(t, server.GetAddress())
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	if server.GetClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", server.GetClientCount())
	}

	if err := server.Broadcast(testFrame("ws-1")); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if messageType != websocket.TextMessage {
		t.Errorf("expected text message, got %d", messageType)
	}
	var frame models.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("bad frame: %v", err)
	}
	if frame.FrameID != "ws-1" {
		t.Errorf("expected frame ws-1, got %s", frame.FrameID)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"reset"}`)); err != nil {
		t.Fatalf("write command: %v", err)
	}
	select {
	case got := <-handler.got:
		if got != `{"type":"reset"}` {
			t.Errorf("handler got %s", got)
		}
	case <-time.After(time.Second):
		t.Fatal("command not delivered")
	}

	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if string(reply) != `{"ok":true}` {
		t.Errorf("unexpected reply %s", reply)
	}
}

func TestWebSocketServer_ProtobufIsBinary(t *testing.T) {
	server := NewWebSocketServer("127.0.0.1", 19891, encoding.NewProtobufEncoder(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go server.Start(ctx)
	time.Sleep(100 * time.Millisecond)

	conn := dial(t, server.GetAddress())
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	server.Broadcast(testFrame("ws-pb"))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, _, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if messageType != websocket.BinaryMessage {
		t.Errorf("expected binary message, got %d", messageType)
	}
}

func TestWebSocketServer_ShutdownDisconnects(t *testing.T) {
	server := NewWebSocketServer("127.0.0.1", 19892, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()
	time.Sleep(100 * time.Millisecond)

	conn := dial(t, server.GetAddress())
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("shutdown failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected closed connection after shutdown")
	}
	if server.GetClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", server.GetClientCount())
	}
}

func TestWebSocketServer_Address(t *testing.T) {
	server := NewWebSocketServer("127.0.0.1", 8787, nil, nil, nil)
	if addr := server.GetAddress(); addr != "ws://127.0.0.1:8787/monitor" {
		t.Errorf("wrong address: %s", addr)
	}
}
