package clients

import (
	"context"

	ws "estate-intake/internal/transport/websocket"
)

// WebSocketClient pushes PDF generation lifecycle events to every
// connected admin session.
type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{
		hub: hub,
	}
}

func (c *WebSocketClient) NotifyGenerationProgress(
	ctx context.Context,
	applicationID string,
	progress float64,
	stage string,
) error {
	if c.hub == nil {
		return nil
	}

	data := map[string]interface{}{
		"applicationId": applicationID,
		"progress":      progress,
	}
	if stage != "" {
		data["stage"] = stage
	}

	message := &ws.Message{
		Type:    "generation_progress",
		Channel: "admin_generation_feed",
		Data:    data,
	}

	c.hub.BroadcastAll(message)
	return nil
}

func (c *WebSocketClient) NotifyGenerationComplete(
	ctx context.Context,
	applicationID string,
	pdfKey string,
) error {
	if c.hub == nil {
		return nil
	}

	message := &ws.Message{
		Type:    "generation_complete",
		Channel: "admin_generation_feed",
		Data: map[string]interface{}{
			"applicationId": applicationID,
			"pdfKey":        pdfKey,
		},
	}

	c.hub.BroadcastAll(message)
	return nil
}

// NotifyGenerationFailed tells admin sessions that generation for an application failed.
func (c *WebSocketClient) NotifyGenerationFailed(ctx context.Context, applicationID string, errMsg string) error {
	if c.hub == nil {
		return nil
	}

	message := &ws.Message{
		Type:    "generation_failed",
		Channel: "admin_generation_feed",
		Data: map[string]interface{}{
			"applicationId": applicationID,
			"message":       errMsg,
		},
	}

	c.hub.BroadcastAll(message)
	return nil
}
