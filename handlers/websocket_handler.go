package handlers

import (
	"net/http"

	"github.com/Dosada05/party-bets/live"
	"github.com/Dosada05/party-bets/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Лента только для чтения, Origin не проверяем.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *live.Hub
}

func NewWebSocketHandler(hub *live.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// ServeWs подключает клиента к ленте новых ставок (/ws/entries).
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	log := middleware.LoggerFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: live.EntriesRoom,
	}
	select {
	case client.Hub.Register <- client:
	case <-h.hub.Done():
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	log.Debug("websocket client connected", zap.String("room", client.Room))
}
