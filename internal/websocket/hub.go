package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"carsales-backend/internal/dispatch"
	"carsales-backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ChatDispatcher is the dispatcher the hub forwards frames to.
type ChatDispatcher interface {
	Dispatch(ctx context.Context, req *models.ChatRequest) (*models.ChatReply, error)
}

// Hub serves the chat websocket: every text frame is a ChatRequest and is
// answered with one WSChatFrame.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*websocket.Conn
	dispatcher  ChatDispatcher
	logger      *zap.Logger
}

func NewHub(dispatcher ChatDispatcher, logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*websocket.Conn),
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.New()
	h.registerConnection(connID, conn)
	defer h.unregisterConnection(connID, conn)

	conn.SetReadLimit(maxMessageSize)

	// The connection's context ends with the read loop.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.String("conn", connID.String()), zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		frame := h.handleFrame(ctx, data)
		if err := h.write(conn, frame); err != nil {
			h.logger.Debug("websocket write failed", zap.String("conn", connID.String()), zap.Error(err))
			return
		}
	}
}

func (h *Hub) handleFrame(ctx context.Context, data []byte) models.WSChatFrame {
	requestID := uuid.NewString()

	var req models.ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return models.WSChatFrame{
			Type:      "error",
			RequestID: requestID,
			Reply:     models.ChatReply{Error: "Invalid request body", Code: "VALIDATION_ERROR"},
		}
	}
	if fields := models.Validate(&req); fields != nil {
		return models.WSChatFrame{
			Type:      "error",
			RequestID: requestID,
			Reply:     models.ChatReply{Error: "Validation failed", Code: "VALIDATION_ERROR", Fields: fields},
		}
	}

	reply, err := h.dispatcher.Dispatch(ctx, &req)
	if err != nil {
		return models.WSChatFrame{Type: "error", RequestID: requestID, Reply: *dispatch.ErrorReply(err)}
	}
	return models.WSChatFrame{Type: "chat_reply", RequestID: requestID, Reply: *reply}
}

func (h *Hub) write(conn *websocket.Conn, frame models.WSChatFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Hub) registerConnection(id uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[id] = conn
	h.logger.Debug("websocket connected", zap.String("conn", id.String()), zap.Int("total", len(h.connections)))
}

func (h *Hub) unregisterConnection(id uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	delete(h.connections, id)
	h.logger.Debug("websocket disconnected", zap.String("conn", id.String()))
}

// Count is the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// CloseAll sends a going-away close frame to every connection. Used on
// shutdown, since hijacked connections outlive http.Server.Shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, conn := range h.connections {
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	}
}
