package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"dikenang-service/internal/middleware"
	"dikenang-service/pkg/logger"
	"dikenang-service/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, implement proper origin checking
		return true
	},
}

type Handler struct {
	hub *Hub
	log *logger.Logger
}

func NewHandler(hub *Hub, log *logger.Logger) *Handler {
	return &Handler{hub: hub, log: log}
}

// Serve godoc
// @Summary Upgrade to a WebSocket for live vote counter updates
// @Description Clients send {"action":"subscribe","postId":"...","kind":"up"} to
// @Description start receiving counter frames for that post, and the matching
// @Description unsubscribe action to stop.
// @Tags realtime
// @Param token query string true "JWT access token"
// @Success 101
// @Router /ws [get]
func (h *Handler) Serve(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := newClient(h.hub, conn, userID)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}
