package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Event 推送给客户端的消息
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type message struct {
	userID string
	data   []byte
}

// Hub 在线连接注册表
// 注册表只由 Run 所在的 goroutine 读写，其余 goroutine 通过通道交互
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	publish    chan message
	online     chan chan int
	done       chan struct{}
	logger     *zap.Logger
}

// NewHub 创建 Hub，需另行调用 Run
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan message, 256),
		online:     make(chan chan int),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run 事件循环，ctx 取消时关闭全部连接并退出
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			return

		case c := <-h.register:
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			h.logger.Debug("ws 连接注册", zap.String("user_id", c.userID), zap.Int("connections", len(set)))

		case c := <-h.unregister:
			h.remove(c)

		case m := <-h.publish:
			for c := range h.clients[m.userID] {
				select {
				case c.send <- m.data:
				default:
					// 缓冲区已满，丢弃慢客户端
					h.logger.Warn("ws 客户端过慢，断开", zap.String("user_id", c.userID))
					h.remove(c)
				}
			}

		case reply := <-h.online:
			n := 0
			for _, set := range h.clients {
				n += len(set)
			}
			reply <- n
		}
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Publish 向用户的全部在线连接推送事件，不阻塞调用方
func (h *Hub) Publish(userID, eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("ws 消息序列化失败", zap.Error(err))
		return
	}
	select {
	case h.publish <- message{userID: userID, data: data}:
	default:
		h.logger.Warn("ws 推送队列已满，丢弃消息", zap.String("user_id", userID))
	}
}

// OnlineCount 当前在线连接数
func (h *Hub) OnlineCount(ctx context.Context) int {
	reply := make(chan int, 1)
	select {
	case h.online <- reply:
	case <-h.done:
		return 0
	case <-ctx.Done():
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-ctx.Done():
		return 0
	}
}

// ── 连接 ──

// Client 单个 websocket 连接
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// Upgrader 生成 websocket 升级器，allowOrigins 为空时放行全部来源
func Upgrader(allowOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowOrigins) == 0 {
				return true
			}
			for _, o := range allowOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
}

// Serve 注册连接并启动读写循环，连接关闭后返回
func (h *Hub) Serve(conn *websocket.Conn, userID string) {
	c := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

// readPump 只处理控制帧，客户端消息丢弃
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("ws 连接异常关闭", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
