package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MessageType 消息类型
type MessageType string

const (
	PredictionEvent MessageType = "prediction"
	TrainingEvent   MessageType = "training"
	ModelReloaded   MessageType = "model_reloaded"
	Heartbeat       MessageType = "heartbeat"
)

// Message 监控消息结构
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Client WebSocket客户端
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	clientID string
}

// WebSocketHub WebSocket中心，向仪表盘推送预测和训练事件
type WebSocketHub struct {
	clients        map[*Client]bool
	broadcast      chan []byte
	register       chan *Client
	unregister     chan *Client
	mu             sync.RWMutex
	upgrader       websocket.Upgrader
	heartbeatEvery time.Duration
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewWebSocketHub 创建WebSocket中心
func NewWebSocketHub() *WebSocketHub {
	ctx, cancel := context.WithCancel(context.Background())

	return &WebSocketHub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 生产环境应设置更严格的origin检查
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		heartbeatEvery: 30 * time.Second,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start 启动WebSocket中心
func (h *WebSocketHub) Start() {
	defer zap.S().Info("websocket hub stopped")

	heartbeat := time.NewTicker(h.heartbeatEvery)
	defer heartbeat.Stop()

	for {
		select {
		case <-heartbeat.C:
			h.mu.RLock()
			total := len(h.clients)
			h.mu.RUnlock()
			if total > 0 {
				h.Publish(Heartbeat, map[string]int{"clients": total})
			}

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			zap.S().Infow("client connected", "client", client.clientID, "total", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			zap.S().Infow("client disconnected", "client", client.clientID, "total", total)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop 停止WebSocket中心
func (h *WebSocketHub) Stop() {
	h.cancel()
}

// HandleWebSocket 处理WebSocket连接
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "err", err)
		return
	}

	client := &Client{
		conn:     conn,
		send:     make(chan []byte, 256),
		clientID: time.Now().UTC().Format("20060102150405.000000"),
	}

	h.register <- client

	go client.writePump()
	go client.readPump(h)
}

// Publish 序列化并广播一条监控消息
func (h *WebSocketHub) Publish(messageType MessageType, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		zap.S().Warnw("failed to marshal monitor message", "type", messageType, "err", err)
		return
	}
	message, err := json.Marshal(Message{
		Type:      messageType,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	})
	if err != nil {
		return
	}

	select {
	case h.broadcast <- message:
	default:
		zap.S().Warn("websocket broadcast queue is full, dropping message")
	}
}

// writePump WebSocket写入泵
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump WebSocket读取泵
func (c *Client) readPump(h *WebSocketHub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.S().Debugw("websocket read error", "client", c.clientID, "err", err)
			}
			break
		}
	}
}
