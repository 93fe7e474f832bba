package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/bunkmate/bunkmate-backend/internal/middleware"
	"github.com/bunkmate/bunkmate-backend/internal/notification"
	ws "github.com/bunkmate/bunkmate-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams zone notifications to the user's open clients.
type WSHandler struct {
	subscriber NotificationSubscriber
	log        zerolog.Logger
	upgrader   websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(subscriber NotificationSubscriber, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		subscriber: subscriber,
		log:        log.With().Str("component", "ws_handler").Logger(),
		upgrader:   buildUpgrader(allowedOrigins),
	}
}

// NotificationStream godoc
// WS /ws/v1/notifications?token=...
// Forwards every notification published for the user until the client disconnects.
func (h *WSHandler) NotificationStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", claims.UserID).
		Str("session_id", claims.SessionID()).
		Logger()

	ctx := c.Request.Context()
	pubsub := h.subscriber.Subscribe(ctx, claims.UserID)
	defer pubsub.Close()

	if err := ws.WriteTyped(conn, ws.ConnectedResponse{Event: ws.EventConnected, SessionID: claims.SessionID()}); err != nil {
		return
	}
	wsLog.Info().Msg("Notification stream connected")

	// The reader only answers pings and detects disconnects. Writes stay on
	// this goroutine; the reader hands replies over through actions.
	done := make(chan struct{})
	actions := make(chan ws.Action, 1)
	go func() {
		defer close(done)
		ws.KeepAlive(conn)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			select {
			case actions <- msg.Action:
			default:
			}
		}
	}()

	ping := time.NewTicker(ws.PingPeriod)
	defer ping.Stop()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			wsLog.Debug().Msg("Notification stream closed")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			var m notification.Message
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				wsLog.Warn().Err(err).Msg("Dropping malformed notification")
				continue
			}
			if err := ws.WriteTyped(conn, ws.NotificationResponse{Event: ws.EventNotification, Notification: m}); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}

		case action := <-actions:
			var err error
			if action == ws.ActionPing {
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			} else {
				err = ws.WriteError(conn, "unknown action: "+string(action))
			}
			if err != nil {
				return
			}

		case <-ping.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}
