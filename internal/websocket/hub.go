package websocket

import (
	"sync"

	"github.com/wfunc/card-battle/internal/logger"
	"go.uber.org/zap"
)

// Hub 连接中心
// 按房间维护在线连接集合，负责房间内广播和单点推送
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // 连接ID → 客户端
	rooms   map[string]map[string]*Client // 房间ID → 连接ID → 客户端

	log *zap.Logger
}

// NewHub 创建连接中心
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		log:     logger.GetModuleLogger("websocket"),
	}
}

// Register 注册新连接（尚未加入任何房间）
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	h.log.Debug("客户端连接",
		zap.String("client_id", client.ID),
		zap.Int("online", len(h.clients)))
}

// Unregister 注销连接并关闭其发送通道
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	h.detachLocked(client)
	close(client.Send)

	h.log.Debug("客户端断开",
		zap.String("client_id", client.ID),
		zap.Int("online", len(h.clients)))
}

// JoinRoom 将连接挂入房间分组
func (h *Hub) JoinRoom(client *Client, roomID, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detachLocked(client)

	group, ok := h.rooms[roomID]
	if !ok {
		group = make(map[string]*Client)
		h.rooms[roomID] = group
	}
	group[client.ID] = client
	client.RoomID = roomID
	client.PlayerID = playerID
}

// LeaveRoom 将连接从房间分组摘除
func (h *Hub) LeaveRoom(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(client)
}

// detachLocked 从当前房间分组摘除，空分组随手清理
// 调用方必须持有h.mu
func (h *Hub) detachLocked(client *Client) {
	if client.RoomID == "" {
		return
	}
	if group, ok := h.rooms[client.RoomID]; ok {
		delete(group, client.ID)
		if len(group) == 0 {
			delete(h.rooms, client.RoomID)
		}
	}
	client.RoomID = ""
	client.PlayerID = ""
}

// BroadcastToRoom 向房间内所有连接广播事件
// exclude 中的连接ID被跳过
func (h *Hub) BroadcastToRoom(roomID string, evt *ServerEvent, exclude ...string) {
	data, err := evt.Encode()
	if err != nil {
		h.log.Error("事件序列化失败",
			zap.String("type", evt.Type),
			zap.Error(err))
		return
	}

	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[roomID]))
	for id, client := range h.rooms[roomID] {
		if !excluded[id] {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		h.send(client, data)
	}
}

// SendToClient 向单个连接推送事件
func (h *Hub) SendToClient(client *Client, evt *ServerEvent) error {
	data, err := evt.Encode()
	if err != nil {
		return err
	}
	return h.send(client, data)
}

// send 非阻塞投递，缓冲区满时丢弃并告警
func (h *Hub) send(client *Client, data []byte) error {
	select {
	case client.Send <- data:
		return nil
	default:
		h.log.Warn("发送缓冲区已满，消息丢弃",
			zap.String("client_id", client.ID),
			zap.String("room_id", client.RoomID))
		return ErrSendBufferFull
	}
}

// RoomSize 房间内在线连接数
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// OnlineCount 在线连接总数
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
