package websocket

import (
	"encoding/json"
	"errors"
	"time"
)

// 客户端控制消息类型
const (
	ControlJoinRoom    = "join_room"
	ControlReadyStatus = "ready_status"
	ControlChatMessage = "chat_message"
	ControlLeaveRoom   = "leave_room"
)

// 服务端事件类型
const (
	EventConnected          = "connected"
	EventPlayerJoined       = "player_joined"
	EventPlayerLeft         = "player_left"
	EventReadyStatusChanged = "ready_status_changed"
	EventGameStarted        = "game_started"
	EventGameEvent          = "game_event"
	EventChatMessage        = "chat_message"
	EventError              = "error"
)

// 连接状态机：未加入 → 已加入 → 已离开
const (
	StateUnjoined = iota
	StateJoined
	StateLeft
)

// 包级错误定义
var (
	ErrClientNotFound = errors.New("客户端不存在")
	ErrSendBufferFull = errors.New("发送缓冲区已满")
	ErrClientClosed   = errors.New("客户端已关闭")
)

// ControlMessage 客户端发来的控制消息
type ControlMessage struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
	DeckID   string `json:"deckId,omitempty"`
	IsReady  bool   `json:"isReady,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ServerEvent 服务端推送的事件信封
type ServerEvent struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// NewServerEvent 创建服务端事件
func NewServerEvent(eventType string, data interface{}) *ServerEvent {
	return &ServerEvent{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Encode 序列化为JSON
func (e *ServerEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}
