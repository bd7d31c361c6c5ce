package handler

import (
	"net/http"

	"smart-locker/internal/logger"
	"smart-locker/internal/usecase/locker"
	"smart-locker/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler feeds live locker state to dashboard clients. Clients only
// listen; the read loop exists to notice disconnects.
type WSHandler struct {
	manager *ws.Manager
	lockers *locker.Service
}

func NewWSHandler(manager *ws.Manager, lockers *locker.Service) *WSHandler {
	return &WSHandler{manager: manager, lockers: lockers}
}

func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	id := h.manager.Register(conn)
	logger.Info("WebSocket client connected", zap.String("client_id", id))

	// Initial snapshot so the dashboard paints without waiting for the
	// next transition.
	if states, err := h.lockers.ListState(c.Request.Context()); err == nil {
		h.manager.BroadcastState(states)
	}

	go func() {
		defer func() {
			h.manager.Unregister(id)
			logger.Info("WebSocket client disconnected", zap.String("client_id", id))
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
