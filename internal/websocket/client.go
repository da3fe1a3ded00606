package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/card-battle/internal/config"
	"github.com/wfunc/card-battle/internal/logger"
	"go.uber.org/zap"
)

const (
	// 写超时
	defaultWriteWait = 10 * time.Second
	// 等待pong的最长时间
	defaultPongWait = 60 * time.Second
	// 发送缓冲区大小
	defaultSendBuffer = 256
	// 单条消息大小上限
	defaultMaxMessageSize = 8192
)

// Client 一条WebSocket连接
// RoomID/PlayerID 在加入房间后由Hub填写
type Client struct {
	ID       string
	RoomID   string
	PlayerID string
	State    int

	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	handler *RoomHandler

	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	maxMessageSize int64

	log *zap.Logger
}

// NewClient 创建客户端连接
func NewClient(hub *Hub, conn *websocket.Conn, handler *RoomHandler, cfg *config.WebSocketConfig) *Client {
	writeWait := defaultWriteWait
	pongWait := defaultPongWait
	sendBuffer := defaultSendBuffer
	maxMessageSize := int64(defaultMaxMessageSize)

	if cfg != nil {
		if cfg.WriteTimeout > 0 {
			writeWait = cfg.WriteTimeout
		}
		if cfg.PongTimeout > 0 {
			pongWait = cfg.PongTimeout
		}
		if cfg.SendBufferSize > 0 {
			sendBuffer = cfg.SendBufferSize
		}
		if cfg.MaxMessageSize > 0 {
			maxMessageSize = cfg.MaxMessageSize
		}
	}

	return &Client{
		ID:             uuid.NewString(),
		State:          StateUnjoined,
		Hub:            hub,
		Conn:           conn,
		Send:           make(chan []byte, sendBuffer),
		handler:        handler,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pongWait * 9 / 10,
		maxMessageSize: maxMessageSize,
		log:            logger.GetModuleLogger("websocket"),
	}
}

// ReadPump 读取循环
// 连接断开时走离开路径并注销
func (c *Client) ReadPump() {
	defer func() {
		c.handler.HandleDisconnect(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("连接异常关闭",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}
		c.handler.HandleMessage(c, message)
	}
}

// WritePump 发送循环
// 独占写端，定期发送ping保活
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// 把积压的消息一并带出
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
