package websocket

import "github.com/bunkmate/bunkmate-backend/internal/notification"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action of an incoming frame.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventConnected    Event = "connected"
	EventNotification Event = "notification"
	EventError        Event = "error"
	EventPong         Event = "pong"
)

// ConnectedResponse is sent once after the upgrade succeeds.
type ConnectedResponse struct {
	Event     Event  `json:"event"`
	SessionID string `json:"session_id"`
}

// NotificationResponse carries one zone notification.
type NotificationResponse struct {
	Event        Event                `json:"event"`
	Notification notification.Message `json:"notification"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
