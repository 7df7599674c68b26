package clients

import (
	"context"
	"fmt"

	ws "loanlook/internal/transport/websocket"
)

const (
	MessageExportProgress = "report_export_progress"
	MessageExportComplete = "report_export_complete"
	MessageExportFailed   = "report_export_failed"
)

// WebSocketClient pushes report-export events to a user's open sockets.
type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{hub: hub}
}

func (c *WebSocketClient) send(userID int64, typ, channel string, data map[string]any) {
	if c == nil || c.hub == nil {
		return
	}
	c.hub.Broadcast(userID, &ws.Message{
		Type:    typ,
		Channel: fmt.Sprintf("%s#%d", channel, userID),
		Data:    data,
	})
}

func (c *WebSocketClient) NotifyExportProgress(ctx context.Context, userID int64, exportID string, progress float64, stage string) error {
	data := map[string]any{"id": exportID, "progress": progress}
	if stage != "" {
		data["stage"] = stage
	}
	c.send(userID, MessageExportProgress, "report_export_progress", data)
	return nil
}

func (c *WebSocketClient) NotifyExportComplete(ctx context.Context, userID int64, exportID, url, filename string) error {
	c.send(userID, MessageExportComplete, "report_export_complete", map[string]any{
		"id":       exportID,
		"url":      url,
		"filename": filename,
	})
	return nil
}

func (c *WebSocketClient) NotifyExportFailed(ctx context.Context, userID int64, exportID, errMsg string) error {
	c.send(userID, MessageExportFailed, "report_export_failed", map[string]any{
		"id":      exportID,
		"message": errMsg,
	})
	return nil
}
