package room

import (
	"context"

	"github.com/google/uuid"
	"github.com/wfunc/card-battle/internal/config"
	apperrors "github.com/wfunc/card-battle/internal/errors"
	"github.com/wfunc/card-battle/internal/game"
	"github.com/wfunc/card-battle/internal/logger"
	"github.com/wfunc/card-battle/internal/models"
	"github.com/wfunc/card-battle/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Registry 房间注册表
// 负责房间生命周期、成员资格和准备状态；开局委托给对局引擎
type Registry struct {
	repos  *repository.Manager
	engine *game.Engine
	cfg    *config.GameConfig
	log    *zap.Logger
}

// NewRegistry 创建房间注册表
func NewRegistry(repos *repository.Manager, engine *game.Engine, cfg *config.GameConfig) *Registry {
	return &Registry{
		repos:  repos,
		engine: engine,
		cfg:    cfg,
		log:    logger.GetModuleLogger("room"),
	}
}

// CreateRoom 创建房间
// 创建者不会自动入座，需要显式加入
func (r *Registry) CreateRoom(ctx context.Context, name string, maxPlayers int, creatorID string) (*models.Room, error) {
	if name == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParam, "房间名不能为空")
	}
	if maxPlayers < r.cfg.MinPlayers {
		return nil, apperrors.Newf(apperrors.ErrInvalidParam, "房间人数上限不能小于%d", r.cfg.MinPlayers)
	}

	if r.cfg.MaxRooms > 0 {
		waiting, err := r.repos.Room().CountByStatus(ctx, models.RoomStatusWaiting)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
		}
		active, err := r.repos.Room().CountByStatus(ctx, models.RoomStatusInProgress)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
		}
		if waiting+active >= int64(r.cfg.MaxRooms) {
			return nil, apperrors.New(apperrors.ErrInvalidParam, "房间数量已达上限")
		}
	}

	room := &models.Room{
		RoomID:     uuid.NewString(),
		Name:       name,
		Status:     models.RoomStatusWaiting,
		MaxPlayers: maxPlayers,
		CreatedBy:  creatorID,
	}
	if err := r.repos.Room().Create(ctx, room); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}

	r.log.Info("房间创建",
		zap.String("room_id", room.RoomID),
		zap.String("created_by", creatorID),
		zap.Int("max_players", maxPlayers))

	return room, nil
}

// JoinRoom 加入房间
// 成员插入和人数计数在同一事务中更新，不允许部分生效
func (r *Registry) JoinRoom(ctx context.Context, roomID, playerID, deckID string) (*models.Room, error) {
	room, err := r.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomStatusWaiting {
		return nil, apperrors.New(apperrors.ErrRoomNotWaiting)
	}

	err = r.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		count, err := tx.RoomMember().CountByRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if count >= int64(room.MaxPlayers) {
			return apperrors.New(apperrors.ErrRoomFull)
		}

		if _, err := tx.RoomMember().Find(ctx, roomID, playerID); err == nil {
			return apperrors.New(apperrors.ErrAlreadyJoined)
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		if err := tx.RoomMember().Create(ctx, &models.RoomMember{
			RoomID:   roomID,
			PlayerID: playerID,
			DeckID:   deckID,
			IsReady:  models.ReadyStatusNotReady,
		}); err != nil {
			return err
		}

		// 计数对齐到成员真实数量
		count, err = tx.RoomMember().CountByRoom(ctx, roomID)
		if err != nil {
			return err
		}
		return tx.Room().UpdateByRoomID(ctx, roomID, map[string]interface{}{
			"current_players": count,
		})
	})
	if err != nil {
		if apperrors.GetCode(err) != apperrors.ErrUnknown {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.ErrTransaction, "加入房间失败")
	}

	logger.LogRoomEvent("player_joined", roomID, playerID)
	return r.findRoom(ctx, roomID)
}

// LeaveRoom 离开房间
// 成员删除和人数计数在同一事务中更新
func (r *Registry) LeaveRoom(ctx context.Context, roomID, playerID string) error {
	if _, err := r.findRoom(ctx, roomID); err != nil {
		return err
	}

	err := r.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if _, err := tx.RoomMember().Find(ctx, roomID, playerID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.New(apperrors.ErrPlayerNotInRoom)
			}
			return err
		}

		if err := tx.RoomMember().Delete(ctx, roomID, playerID); err != nil {
			return err
		}

		count, err := tx.RoomMember().CountByRoom(ctx, roomID)
		if err != nil {
			return err
		}
		return tx.Room().UpdateByRoomID(ctx, roomID, map[string]interface{}{
			"current_players": count,
		})
	})
	if err != nil {
		if apperrors.GetCode(err) != apperrors.ErrUnknown {
			return err
		}
		return apperrors.Wrap(err, apperrors.ErrTransaction, "离开房间失败")
	}

	logger.LogRoomEvent("player_left", roomID, playerID)
	return nil
}

// SetReady 设置准备状态
// 除存储标志外没有其它副作用，通知由传输层负责
func (r *Registry) SetReady(ctx context.Context, roomID, playerID string, ready bool) error {
	if _, err := r.findRoom(ctx, roomID); err != nil {
		return err
	}

	if _, err := r.repos.RoomMember().Find(ctx, roomID, playerID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.New(apperrors.ErrPlayerNotInRoom)
		}
		return apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	status := models.ReadyStatusNotReady
	if ready {
		status = models.ReadyStatusReady
	}
	if err := r.repos.RoomMember().UpdateReady(ctx, roomID, playerID, status); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate)
	}

	logger.LogRoomEvent("ready_status_changed", roomID, playerID)
	return nil
}

// StartSession 开始对局
// 校验通过后交给引擎：引擎负责会话创建和房间状态翻转
func (r *Registry) StartSession(ctx context.Context, roomID string) (*game.State, error) {
	room, err := r.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomStatusWaiting {
		return nil, apperrors.New(apperrors.ErrRoomNotWaiting)
	}
	if len(room.Members) < r.cfg.MinPlayers {
		return nil, apperrors.Newf(apperrors.ErrInsufficientPlayers, "当前%d人，至少需要%d人", len(room.Members), r.cfg.MinPlayers)
	}
	for _, m := range room.Members {
		if m.IsReady != models.ReadyStatusReady {
			return nil, apperrors.Newf(apperrors.ErrPlayersNotReady, "玩家 %s 未准备", m.PlayerID)
		}
	}

	state, err := r.engine.CreateSession(ctx, roomID)
	if err != nil {
		return nil, err
	}

	r.log.Info("对局开始",
		zap.String("room_id", roomID),
		zap.String("game_id", state.Session.GameID))

	return state, nil
}

// GetRoom 查询房间（带成员）
func (r *Registry) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return r.findRoom(ctx, roomID)
}

// ListRooms 列出房间，status 为空时列出全部
func (r *Registry) ListRooms(ctx context.Context, status string, p *repository.Pagination) ([]*models.Room, error) {
	if status != "" {
		return r.repos.Room().FindByStatus(ctx, status, p)
	}
	return r.repos.Room().List(ctx, p)
}

// findRoom 查找房间，不存在时返回领域错误
func (r *Registry) findRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := r.repos.Room().FindByRoomID(ctx, roomID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.ErrRoomNotFound)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return room, nil
}
