package repository

import (
	"context"

	"github.com/wfunc/card-battle/internal/models"
	"gorm.io/gorm"
)

// GamePlayerRepository 对局玩家仓储接口
type GamePlayerRepository interface {
	BaseRepository
	Create(ctx context.Context, player *models.GamePlayer) error
	CreateBatch(ctx context.Context, players []*models.GamePlayer) error
	Update(ctx context.Context, player *models.GamePlayer) error
	UpdateByGamePlayer(ctx context.Context, gameID, playerID string, updates map[string]interface{}) error
	Find(ctx context.Context, gameID, playerID string) (*models.GamePlayer, error)
	FindByGame(ctx context.Context, gameID string) ([]*models.GamePlayer, error)
}

// gamePlayerRepo 对局玩家仓储实现
type gamePlayerRepo struct {
	*BaseRepo
}

// NewGamePlayerRepository 创建对局玩家仓储
func NewGamePlayerRepository(db *gorm.DB) GamePlayerRepository {
	return &gamePlayerRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建对局玩家
func (r *gamePlayerRepo) Create(ctx context.Context, player *models.GamePlayer) error {
	return r.db.WithContext(ctx).Create(player).Error
}

// CreateBatch 批量创建对局玩家
func (r *gamePlayerRepo) CreateBatch(ctx context.Context, players []*models.GamePlayer) error {
	if len(players) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(players).Error
}

// Update 更新对局玩家
func (r *gamePlayerRepo) Update(ctx context.Context, player *models.GamePlayer) error {
	return r.db.WithContext(ctx).Save(player).Error
}

// UpdateByGamePlayer 根据对局和玩家ID更新
func (r *gamePlayerRepo) UpdateByGamePlayer(ctx context.Context, gameID, playerID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.GamePlayer{}).
		Where("game_id = ? AND player_id = ?", gameID, playerID).
		Updates(updates).Error
}

// Find 查找对局中的指定玩家
func (r *gamePlayerRepo) Find(ctx context.Context, gameID, playerID string) (*models.GamePlayer, error) {
	var player models.GamePlayer
	err := r.db.WithContext(ctx).
		Where("game_id = ? AND player_id = ?", gameID, playerID).
		First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// FindByGame 查找对局全部玩家（按座次）
func (r *gamePlayerRepo) FindByGame(ctx context.Context, gameID string) ([]*models.GamePlayer, error) {
	var players []*models.GamePlayer
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("player_index asc").
		Find(&players).Error
	return players, err
}

// WithTx 使用事务
func (r *gamePlayerRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gamePlayerRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
