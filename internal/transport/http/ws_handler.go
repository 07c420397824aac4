package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"quizify-service/internal/app"
	"quizify-service/internal/domain"
	"quizify-service/internal/pkg/logger"
)

// WSHandler upgrades authenticated requests into per-user event channels.
type WSHandler struct {
	tokens        *TokenManager
	hub           *Hub
	notifications *app.NotificationService
	upgrader      websocket.Upgrader
	log           *logger.Logger
}

func NewWSHandler(tokens *TokenManager, hub *Hub, notifications *app.NotificationService, log *logger.Logger) *WSHandler {
	return &WSHandler{
		tokens:        tokens,
		hub:           hub,
		notifications: notifications,
		log:           log.With("component", "ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type notificationRef struct {
	NotificationID string `json:"notificationId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS authenticates the socket, joins the user's room, and services
// notification sync requests until the connection drops.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	userID, err := h.tokens.Parse(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	client := h.hub.Register(userID)
	defer h.hub.Unregister(client)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range client.send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write error", "user", userID, "error", err)
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, userID, client, inbound)
	}

	h.hub.Unregister(client)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, userID string, client *hubClient, inbound inboundMessage) {
	ctx := r.Context()
	switch domain.EventKind(inbound.Type) {
	case "notification:get":
		notifs, err := h.notifications.List(ctx, userID)
		if err != nil {
			h.sendError(client, "could not load notifications")
			return
		}
		h.send(client, envelope{
			Type:    string(domain.EventNotificationData),
			Payload: domain.NotificationDataEvent{Notifications: notifs},
		})
	case "notification:read":
		var ref notificationRef
		if err := json.Unmarshal(inbound.Payload, &ref); err != nil || ref.NotificationID == "" {
			h.sendError(client, "invalid notification reference")
			return
		}
		if err := h.notifications.MarkRead(ctx, userID, ref.NotificationID); err != nil && !errors.Is(err, domain.ErrNotificationNotFound) {
			h.sendError(client, "could not mark notification read")
		}
	case "notification:delete":
		var ref notificationRef
		if err := json.Unmarshal(inbound.Payload, &ref); err != nil || ref.NotificationID == "" {
			h.sendError(client, "invalid notification reference")
			return
		}
		if err := h.notifications.Delete(ctx, userID, ref.NotificationID); err != nil && !errors.Is(err, domain.ErrNotificationNotFound) {
			h.sendError(client, "could not delete notification")
		}
	case "notification:delete-all":
		if err := h.notifications.DeleteAll(ctx, userID); err != nil {
			h.sendError(client, "could not delete notifications")
		}
	default:
		h.sendError(client, "unsupported message type")
	}
}

// send queues a message for this connection only, dropping the oldest queued
// message instead of blocking.
func (h *WSHandler) send(client *hubClient, env envelope) {
	select {
	case client.send <- env:
	default:
		select {
		case <-client.send:
		default:
		}
		client.send <- env
	}
}

func (h *WSHandler) sendError(client *hubClient, message string) {
	h.send(client, envelope{Type: "error", Payload: errorPayload{Message: message}})
}
