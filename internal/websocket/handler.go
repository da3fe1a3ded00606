package websocket

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	"github.com/wfunc/card-battle/internal/config"
	apperrors "github.com/wfunc/card-battle/internal/errors"
	"github.com/wfunc/card-battle/internal/logger"
	"github.com/wfunc/card-battle/internal/room"
	"go.uber.org/zap"
)

// RoomHandler 房间控制消息处理器
// 把连接上的控制消息翻译成房间注册表操作，并向房间广播结果
type RoomHandler struct {
	hub      *Hub
	registry *room.Registry
	chatMax  int
	log      *zap.Logger
}

// NewRoomHandler 创建房间消息处理器
func NewRoomHandler(hub *Hub, registry *room.Registry, cfg *config.GameConfig) *RoomHandler {
	chatMax := 500
	if cfg != nil && cfg.ChatMaxLength > 0 {
		chatMax = cfg.ChatMaxLength
	}
	return &RoomHandler{
		hub:      hub,
		registry: registry,
		chatMax:  chatMax,
		log:      logger.GetModuleLogger("websocket"),
	}
}

// HandleMessage 处理一条客户端控制消息
// 状态机：未加入时只接受join_room；已离开的连接不再接受任何消息
func (h *RoomHandler) HandleMessage(c *Client, raw []byte) {
	var msg ControlMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, apperrors.Wrap(err, apperrors.ErrMessageFormat))
		return
	}

	if c.State == StateLeft {
		h.sendError(c, apperrors.New(apperrors.ErrWebSocketClosed, "连接已离开房间"))
		return
	}

	switch msg.Type {
	case ControlJoinRoom:
		h.handleJoin(c, &msg)
	case ControlReadyStatus:
		h.handleReady(c, &msg)
	case ControlChatMessage:
		h.handleChat(c, &msg)
	case ControlLeaveRoom:
		h.handleLeave(c)
	default:
		h.sendError(c, apperrors.Newf(apperrors.ErrMessageFormat, "未知的消息类型: %s", msg.Type))
	}
}

// handleJoin 加入房间
func (h *RoomHandler) handleJoin(c *Client, msg *ControlMessage) {
	if c.State == StateJoined {
		h.sendError(c, apperrors.New(apperrors.ErrAlreadyJoined))
		return
	}
	if msg.RoomID == "" || msg.PlayerID == "" {
		h.sendError(c, apperrors.New(apperrors.ErrInvalidParam, "roomId和playerId不能为空"))
		return
	}

	ctx := context.Background()
	r, err := h.registry.JoinRoom(ctx, msg.RoomID, msg.PlayerID, msg.DeckID)
	if err != nil {
		// 已是房间成员的玩家重新建立连接时允许重挂
		if !apperrors.Is(err, apperrors.ErrAlreadyJoined) {
			h.sendError(c, err)
			return
		}
		if r, err = h.registry.GetRoom(ctx, msg.RoomID); err != nil {
			h.sendError(c, err)
			return
		}
	}

	h.hub.JoinRoom(c, msg.RoomID, msg.PlayerID)
	c.State = StateJoined

	h.hub.SendToClient(c, NewServerEvent(EventConnected, map[string]interface{}{
		"roomId":         r.RoomID,
		"playerId":       msg.PlayerID,
		"currentPlayers": r.CurrentPlayers,
		"maxPlayers":     r.MaxPlayers,
	}))
	h.hub.BroadcastToRoom(msg.RoomID, NewServerEvent(EventPlayerJoined, map[string]interface{}{
		"roomId":         msg.RoomID,
		"playerId":       msg.PlayerID,
		"currentPlayers": r.CurrentPlayers,
	}), c.ID)
}

// handleReady 切换准备状态
func (h *RoomHandler) handleReady(c *Client, msg *ControlMessage) {
	if c.State != StateJoined {
		h.sendError(c, apperrors.New(apperrors.ErrNotJoined))
		return
	}

	if err := h.registry.SetReady(context.Background(), c.RoomID, c.PlayerID, msg.IsReady); err != nil {
		h.sendError(c, err)
		return
	}

	h.hub.BroadcastToRoom(c.RoomID, NewServerEvent(EventReadyStatusChanged, map[string]interface{}{
		"roomId":   c.RoomID,
		"playerId": c.PlayerID,
		"isReady":  msg.IsReady,
	}))
}

// handleChat 房间内聊天
func (h *RoomHandler) handleChat(c *Client, msg *ControlMessage) {
	if c.State != StateJoined {
		h.sendError(c, apperrors.New(apperrors.ErrNotJoined))
		return
	}
	if msg.Message == "" {
		h.sendError(c, apperrors.New(apperrors.ErrInvalidParam, "消息内容不能为空"))
		return
	}
	if utf8.RuneCountInString(msg.Message) > h.chatMax {
		h.sendError(c, apperrors.Newf(apperrors.ErrMessageTooLong, "消息长度超过%d", h.chatMax))
		return
	}

	h.hub.BroadcastToRoom(c.RoomID, NewServerEvent(EventChatMessage, map[string]interface{}{
		"roomId":   c.RoomID,
		"playerId": c.PlayerID,
		"message":  msg.Message,
	}))
}

// handleLeave 主动离开房间，连接进入终态
func (h *RoomHandler) handleLeave(c *Client) {
	if c.State != StateJoined {
		h.sendError(c, apperrors.New(apperrors.ErrNotJoined))
		return
	}
	h.leave(c)
	c.State = StateLeft
}

// HandleDisconnect 连接断开时的清理
// 已加入房间的连接按离开处理，之后从中心注销
func (h *RoomHandler) HandleDisconnect(c *Client) {
	if c.State == StateJoined {
		h.leave(c)
		c.State = StateLeft
	}
	h.hub.Unregister(c)
}

// leave 退出注册表并广播player_left
func (h *RoomHandler) leave(c *Client) {
	roomID, playerID := c.RoomID, c.PlayerID

	if err := h.registry.LeaveRoom(context.Background(), roomID, playerID); err != nil {
		// 房间可能已被清理，传输层只记录不阻断
		h.log.Warn("离开房间失败",
			zap.String("room_id", roomID),
			zap.String("player_id", playerID),
			zap.Error(err))
	}

	h.hub.LeaveRoom(c)
	h.hub.BroadcastToRoom(roomID, NewServerEvent(EventPlayerLeft, map[string]interface{}{
		"roomId":   roomID,
		"playerId": playerID,
	}))
}

// NotifyGameStarted 对局开始后通知整个房间
func (h *RoomHandler) NotifyGameStarted(roomID, gameID string) {
	h.hub.BroadcastToRoom(roomID, NewServerEvent(EventGameStarted, map[string]interface{}{
		"roomId": roomID,
		"gameId": gameID,
	}))
}

// sendError 向单个连接推送错误事件
func (h *RoomHandler) sendError(c *Client, err error) {
	appErr := apperrors.Wrap(err, apperrors.ErrUnknown)
	h.hub.SendToClient(c, NewServerEvent(EventError, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": appErr.Details,
	}))
}
