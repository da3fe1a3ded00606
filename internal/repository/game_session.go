package repository

import (
	"context"
	"time"

	"github.com/wfunc/card-battle/internal/models"
	"gorm.io/gorm"
)

// GameSessionRepository 游戏会话仓储接口
type GameSessionRepository interface {
	BaseRepository
	Create(ctx context.Context, session *models.GameSession) error
	Update(ctx context.Context, session *models.GameSession) error
	UpdateByGameID(ctx context.Context, gameID string, updates map[string]interface{}) error
	FindByGameID(ctx context.Context, gameID string) (*models.GameSession, error)
	FindActiveByRoomID(ctx context.Context, roomID string) (*models.GameSession, error)
	ListActive(ctx context.Context) ([]*models.GameSession, error)
	FindByRoomID(ctx context.Context, roomID string, p *Pagination) ([]*models.GameSession, error)
	EndSession(ctx context.Context, gameID, status, winnerID string) error
}

// gameSessionRepo 游戏会话仓储实现
type gameSessionRepo struct {
	*BaseRepo
}

// NewGameSessionRepository 创建游戏会话仓储
func NewGameSessionRepository(db *gorm.DB) GameSessionRepository {
	return &gameSessionRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建游戏会话
func (r *gameSessionRepo) Create(ctx context.Context, session *models.GameSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// Update 更新游戏会话
func (r *gameSessionRepo) Update(ctx context.Context, session *models.GameSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// UpdateByGameID 根据对局ID更新
func (r *gameSessionRepo) UpdateByGameID(ctx context.Context, gameID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("game_id = ?", gameID).
		Updates(updates).Error
}

// FindByGameID 根据对局ID查找（带玩家）
func (r *gameSessionRepo) FindByGameID(ctx context.Context, gameID string) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("player_index asc")
		}).
		Where("game_id = ?", gameID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindActiveByRoomID 查找房间当前进行中的对局
func (r *gameSessionRepo) FindActiveByRoomID(ctx context.Context, roomID string) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("player_index asc")
		}).
		Where("room_id = ? AND status = ?", roomID, models.SessionStatusActive).
		Order("created_at desc").
		First(&session).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListActive 列出全部进行中的对局
func (r *gameSessionRepo) ListActive(ctx context.Context) ([]*models.GameSession, error) {
	var sessions []*models.GameSession
	err := r.db.WithContext(ctx).
		Where("status = ?", models.SessionStatusActive).
		Order("started_at asc").
		Find(&sessions).Error
	return sessions, err
}

// FindByRoomID 查找房间的历史对局（分页）
func (r *gameSessionRepo) FindByRoomID(ctx context.Context, roomID string, p *Pagination) ([]*models.GameSession, error) {
	var sessions []*models.GameSession

	r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("room_id = ?", roomID).
		Count(&p.Total)

	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at desc").
		Scopes(Paginate(p)).
		Find(&sessions).Error

	return sessions, err
}

// EndSession 结束对局
func (r *gameSessionRepo) EndSession(ctx context.Context, gameID, status, winnerID string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"finished_at": &now,
	}
	if winnerID != "" {
		updates["winner_id"] = winnerID
	}

	return r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("game_id = ?", gameID).
		Updates(updates).Error
}

// WithTx 使用事务
func (r *gameSessionRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameSessionRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
