package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"parking_facility/internal/domain"
)

var upgrader = websocket.Upgrader{
	// Display boards connect from arbitrary origins on the facility network.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketManager fans spot-occupancy updates out to connected display
// boards. It implements service.SpotNotifier.
type WebSocketManager struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	mutex      sync.RWMutex
	logger     *zap.SugaredLogger
}

func NewWebSocketManager(logger *zap.SugaredLogger) *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 64),
		logger:     logger,
	}
}

func (wsm *WebSocketManager) Start() {
	for {
		select {
		case client := <-wsm.register:
			wsm.mutex.Lock()
			wsm.clients[client] = true
			total := len(wsm.clients)
			wsm.mutex.Unlock()
			wsm.logger.Infow("display board connected", "total", total)

		case client := <-wsm.unregister:
			wsm.mutex.Lock()
			if _, ok := wsm.clients[client]; ok {
				delete(wsm.clients, client)
				client.Close()
			}
			total := len(wsm.clients)
			wsm.mutex.Unlock()
			wsm.logger.Infow("display board disconnected", "total", total)

		case message := <-wsm.broadcast:
			wsm.mutex.Lock()
			for client := range wsm.clients {
				if err := wsm.writeMessage(client, message); err != nil {
					wsm.logger.Warnw("dropping display board", "error", err)
					client.Close()
					delete(wsm.clients, client)
				}
			}
			wsm.mutex.Unlock()
		}
	}
}

func (wsm *WebSocketManager) writeMessage(client *websocket.Conn, message []byte) error {
	return client.WriteMessage(websocket.TextMessage, message)
}

// NotifySpotUpdate queues the update for broadcast. It never blocks; a full
// queue drops the message, boards resync from the snapshot endpoints.
func (wsm *WebSocketManager) NotifySpotUpdate(update domain.SpotUpdateNotification) {
	message, err := json.Marshal(update)
	if err != nil {
		wsm.logger.Errorw("could not marshal spot update", "error", err)
		return
	}

	select {
	case wsm.broadcast <- message:
	default:
		wsm.logger.Warnw("broadcast queue full, dropping spot update", "spot_id", update.SpotID)
	}
}

type WebSocketHandler struct {
	wsManager *WebSocketManager
}

func NewWebSocketHandler(wsManager *WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{wsManager: wsManager}
}

// GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.wsManager.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	h.wsManager.register <- conn

	go func() {
		defer func() {
			h.wsManager.unregister <- conn
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.wsManager.logger.Warnw("websocket read error", "error", err)
				}
				break
			}
		}
	}()
}
