package websocket

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"support-desk-be/internal/constant"
	"support-desk-be/internal/dto"
	"support-desk-be/internal/pkg/logger"
	"support-desk-be/internal/pkg/serverutils"
	"support-desk-be/internal/repository/memory"
	"support-desk-be/internal/service"
)

// Handler owns the websocket endpoint: upgrade, handshake auth, session
// wiring.
type Handler struct {
	hub           *Hub
	conversations service.IConversationService
	buffer        *memory.MessageBuffer
	logger        logger.ILogger
}

func NewHandler(
	hub *Hub,
	conversations service.IConversationService,
	buffer *memory.MessageBuffer,
	log logger.ILogger,
) *Handler {
	return &Handler{
		hub:           hub,
		conversations: conversations,
		buffer:        buffer,
		logger:        log,
	}
}

// Upgrade gates the route to actual websocket upgrade requests.
func (h *Handler) Upgrade() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Serve completes the upgrade and runs the connection.
func (h *Handler) Serve() fiber.Handler {
	return websocket.New(h.handle)
}

// handle authenticates the fresh connection. The token travels either in
// the `token` query parameter or an Authorization bearer header. A failed
// handshake gets exactly one ERROR frame, then the connection ends.
func (h *Handler) handle(conn *websocket.Conn) {
	token := conn.Query("token")
	if token == "" {
		header := conn.Headers("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}

	identity, err := serverutils.ParseToken(token)
	if err != nil {
		h.reject(conn)
		return
	}

	client := newClient(h.hub, conn, identity.UserId, identity.Role)
	NewSession(client, h.conversations, h.buffer, h.logger)

	h.hub.register <- client

	h.logger.Info("Handler", "Connection established", map[string]interface{}{
		"session_id": client.SessionID,
		"user_id":    client.UserID,
		"role":       client.Role,
	})

	go client.writePump()
	client.readPump()
}

func (h *Handler) reject(conn *websocket.Conn) {
	frame, _ := json.Marshal(dto.OutboundEnvelope{
		Event: constant.EventError,
		Data:  dto.ErrorData{Message: constant.MsgUnauthorized},
	})
	conn.WriteMessage(websocket.TextMessage, frame)
	conn.Close()
}
