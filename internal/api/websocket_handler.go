package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wfunc/card-battle/internal/config"
	"github.com/wfunc/card-battle/internal/logger"
	ws "github.com/wfunc/card-battle/internal/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler WebSocket升级处理器
type WebSocketHandler struct {
	hub      *ws.Hub
	room     *ws.RoomHandler
	cfg      *config.WebSocketConfig
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewWebSocketHandler 创建WebSocket升级处理器
func NewWebSocketHandler(hub *ws.Hub, room *ws.RoomHandler, cfg *config.WebSocketConfig) *WebSocketHandler {
	readBuffer, writeBuffer := 1024, 1024
	compression := false
	if cfg != nil {
		if cfg.ReadBufferSize > 0 {
			readBuffer = cfg.ReadBufferSize
		}
		if cfg.WriteBufferSize > 0 {
			writeBuffer = cfg.WriteBufferSize
		}
		compression = cfg.EnableCompression
	}

	return &WebSocketHandler{
		hub:  hub,
		room: room,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    readBuffer,
			WriteBufferSize:   writeBuffer,
			EnableCompression: compression,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: 生产环境按部署域名校验Origin
				return true
			},
		},
		log: logger.GetModuleLogger("api"),
	}
}

// Serve 升级连接并启动读写协程
// GET /ws
func (h *WebSocketHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("WebSocket升级失败",
			zap.String("ip", c.ClientIP()),
			zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, h.room, h.cfg)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.log.Info("WebSocket连接建立",
		zap.String("client_id", client.ID),
		zap.String("ip", c.ClientIP()))
}
