package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ws "loanlook/internal/transport/websocket"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func dialHub(t *testing.T, userID int64) (*ws.Hub, *websocket.Conn) {
	t.Helper()

	hub := ws.NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, userID)
	}))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:], nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// registration happens on the hub goroutine
	time.Sleep(100 * time.Millisecond)
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (ws.Message, map[string]any) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var received ws.Message
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	data, ok := received.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data %T", received.Data)
	}
	return received, data
}

func TestWebSocketClient_NotifyExportProgress(t *testing.T) {
	hub, conn := dialHub(t, 7)
	client := NewWebSocketClient(hub)

	if err := client.NotifyExportProgress(context.Background(), 7, "exports:abc", 42.5, "generating"); err != nil {
		t.Fatalf("notify progress: %v", err)
	}

	msg, data := readMessage(t, conn)
	if msg.Type != MessageExportProgress {
		t.Errorf("expected type %q, got %q", MessageExportProgress, msg.Type)
	}
	if msg.Channel != "report_export_progress#7" {
		t.Errorf("unexpected channel %q", msg.Channel)
	}
	if msg.UserID != 7 {
		t.Errorf("expected user 7, got %d", msg.UserID)
	}
	if data["id"] != "exports:abc" || data["progress"].(float64) != 42.5 || data["stage"] != "generating" {
		t.Errorf("unexpected data %v", data)
	}
}

func TestWebSocketClient_NotifyExportComplete(t *testing.T) {
	hub, conn := dialHub(t, 1)
	client := NewWebSocketClient(hub)

	err := client.NotifyExportComplete(context.Background(), 1, "exports:abc", "https://example.com/r.xlsx", "report_monthly_2024-05.xlsx")
	if err != nil {
		t.Fatalf("notify complete: %v", err)
	}

	msg, data := readMessage(t, conn)
	if msg.Type != MessageExportComplete || msg.Channel != "report_export_complete#1" {
		t.Errorf("unexpected message %+v", msg)
	}
	if data["url"] != "https://example.com/r.xlsx" || data["filename"] != "report_monthly_2024-05.xlsx" {
		t.Errorf("unexpected data %v", data)
	}
}

func TestWebSocketClient_NotifyExportFailed(t *testing.T) {
	hub, conn := dialHub(t, 1)
	client := NewWebSocketClient(hub)

	if err := client.NotifyExportFailed(context.Background(), 1, "exports:abc", "upload failed"); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	msg, data := readMessage(t, conn)
	if msg.Type != MessageExportFailed {
		t.Errorf("unexpected type %q", msg.Type)
	}
	if data["message"] != "upload failed" {
		t.Errorf("unexpected data %v", data)
	}
}

func TestWebSocketClient_NilHub(t *testing.T) {
	client := NewWebSocketClient(nil)

	if err := client.NotifyExportProgress(context.Background(), 1, "x", 50, ""); err != nil {
		t.Errorf("expected no error with nil hub, got %v", err)
	}
	if err := client.NotifyExportComplete(context.Background(), 1, "x", "u", "f"); err != nil {
		t.Errorf("expected no error with nil hub, got %v", err)
	}

	var nilClient *WebSocketClient
	if err := nilClient.NotifyExportFailed(context.Background(), 1, "x", "boom"); err != nil {
		t.Errorf("expected no error on nil client, got %v", err)
	}
}
