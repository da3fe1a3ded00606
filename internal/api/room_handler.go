package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/card-battle/internal/errors"
	"github.com/wfunc/card-battle/internal/logger"
	"github.com/wfunc/card-battle/internal/repository"
	"github.com/wfunc/card-battle/internal/room"
	"go.uber.org/zap"
)

// StartNotifier 对局开始时通知房间内连接
type StartNotifier interface {
	NotifyGameStarted(roomID, gameID string)
}

// RoomHandler 房间API处理器
type RoomHandler struct {
	registry *room.Registry
	notifier StartNotifier
	log      *zap.Logger
}

// NewRoomHandler 创建房间API处理器
func NewRoomHandler(registry *room.Registry, notifier StartNotifier) *RoomHandler {
	return &RoomHandler{
		registry: registry,
		notifier: notifier,
		log:      logger.GetModuleLogger("api"),
	}
}

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	Name       string `json:"name" binding:"required"`
	MaxPlayers int    `json:"maxPlayers" binding:"required"`
	CreatorID  string `json:"creatorId" binding:"required"`
}

// CreateRoom 创建房间
// POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrInvalidParam))
		return
	}

	r, err := h.registry.CreateRoom(c.Request.Context(), req.Name, req.MaxPlayers, req.CreatorID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, r)
}

// ListRooms 房间列表
// GET /api/v1/rooms?status=waiting&page=1&page_size=20
func (h *RoomHandler) ListRooms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	rooms, err := h.registry.ListRooms(c.Request.Context(), c.Query("status"), repository.NewPagination(page, pageSize))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// GetRoom 房间详情（带成员）
// GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	r, err := h.registry.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, r)
}

// JoinRoomRequest 加入房间请求
type JoinRoomRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
	DeckID   string `json:"deckId"`
}

// JoinRoom 加入房间
// POST /api/v1/rooms/:id/join
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrInvalidParam))
		return
	}

	r, err := h.registry.JoinRoom(c.Request.Context(), c.Param("id"), req.PlayerID, req.DeckID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, r)
}

// LeaveRoomRequest 离开房间请求
type LeaveRoomRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

// LeaveRoom 离开房间
// POST /api/v1/rooms/:id/leave
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	var req LeaveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrInvalidParam))
		return
	}

	if err := h.registry.LeaveRoom(c.Request.Context(), c.Param("id"), req.PlayerID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// SetReadyRequest 准备状态请求
type SetReadyRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
	IsReady  bool   `json:"isReady"`
}

// SetReady 设置准备状态
// POST /api/v1/rooms/:id/ready
func (h *RoomHandler) SetReady(c *gin.Context) {
	var req SetReadyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrInvalidParam))
		return
	}

	if err := h.registry.SetReady(c.Request.Context(), c.Param("id"), req.PlayerID, req.IsReady); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"playerId": req.PlayerID,
		"isReady":  req.IsReady,
	})
}

// StartSession 开始对局
// POST /api/v1/rooms/:id/start
func (h *RoomHandler) StartSession(c *gin.Context) {
	roomID := c.Param("id")

	state, err := h.registry.StartSession(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyGameStarted(roomID, state.Session.GameID)
	}

	h.log.Info("对局已开始",
		zap.String("room_id", roomID),
		zap.String("game_id", state.Session.GameID))

	respondCreated(c, gin.H{
		"gameId":  state.Session.GameID,
		"roomId":  roomID,
		"players": state.Players,
	})
}
