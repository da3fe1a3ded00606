package api

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/card-battle/internal/errors"
	"github.com/wfunc/card-battle/internal/game"
	"github.com/wfunc/card-battle/internal/logger"
	"go.uber.org/zap"
)

// GameHandler 对局API处理器
type GameHandler struct {
	engine *game.Engine
	log    *zap.Logger
}

// NewGameHandler 创建对局API处理器
func NewGameHandler(engine *game.Engine) *GameHandler {
	return &GameHandler{
		engine: engine,
		log:    logger.GetModuleLogger("api"),
	}
}

// ListGames 进行中的对局列表
// GET /api/v1/games
func (h *GameHandler) ListGames(c *gin.Context) {
	gameIDs := h.engine.ListActive()
	respondOK(c, gin.H{
		"games": gameIDs,
		"count": len(gameIDs),
	})
}

// GetGame 对局状态
// GET /api/v1/games/:id
func (h *GameHandler) GetGame(c *gin.Context) {
	state, err := h.engine.GetState(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"session": state.Session,
		"players": state.Players,
		"cards":   state.Cards,
	})
}

// PostAction 提交对局行动
// POST /api/v1/games/:id/actions
func (h *GameHandler) PostAction(c *gin.Context) {
	var action game.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrInvalidParam))
		return
	}
	if action.Type == "" || action.PlayerID == "" {
		respondError(c, apperrors.New(apperrors.ErrInvalidParam, "type和player_id不能为空"))
		return
	}

	state, err := h.engine.ProcessAction(c.Request.Context(), c.Param("id"), action)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"session": state.Session,
		"players": state.Players,
	})
}

// StartTurn 开始当前行动方的回合（能量回复、解除横置）
// POST /api/v1/games/:id/turn/start
func (h *GameHandler) StartTurn(c *gin.Context) {
	state, err := h.engine.StartTurn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"session": state.Session,
		"players": state.Players,
	})
}

// EndGameRequest 结束对局请求
type EndGameRequest struct {
	WinnerID string `json:"winnerId"`
}

// EndGame 结束对局
// POST /api/v1/games/:id/end
func (h *GameHandler) EndGame(c *gin.Context) {
	// winnerId 可选，允许空请求体（平局收尾）
	var req EndGameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.Wrap(err, apperrors.ErrInvalidParam))
			return
		}
	}

	gameID := c.Param("id")
	if err := h.engine.EndSession(c.Request.Context(), gameID, req.WinnerID); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("对局已结束",
		zap.String("game_id", gameID),
		zap.String("winner_id", req.WinnerID))
	respondOK(c, nil)
}
