package repository

import (
	"context"

	"github.com/wfunc/card-battle/internal/models"
	"gorm.io/gorm"
)

// GameActionLogRepository 对局行动日志仓储接口
type GameActionLogRepository interface {
	BaseRepository
	Create(ctx context.Context, log *models.GameActionLog) error
	FindByGame(ctx context.Context, gameID string, p *Pagination) ([]*models.GameActionLog, error)
	CountByGame(ctx context.Context, gameID string) (int64, error)
}

// gameActionLogRepo 对局行动日志仓储实现
type gameActionLogRepo struct {
	*BaseRepo
}

// NewGameActionLogRepository 创建对局行动日志仓储
func NewGameActionLogRepository(db *gorm.DB) GameActionLogRepository {
	return &gameActionLogRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 追加行动日志（只增不改）
func (r *gameActionLogRepo) Create(ctx context.Context, log *models.GameActionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByGame 查找对局的行动日志（按发生顺序，分页）
func (r *gameActionLogRepo) FindByGame(ctx context.Context, gameID string, p *Pagination) ([]*models.GameActionLog, error) {
	var logs []*models.GameActionLog

	r.db.WithContext(ctx).
		Model(&models.GameActionLog{}).
		Where("game_id = ?", gameID).
		Count(&p.Total)

	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("id asc").
		Scopes(Paginate(p)).
		Find(&logs).Error

	return logs, err
}

// CountByGame 统计对局行动数
func (r *gameActionLogRepo) CountByGame(ctx context.Context, gameID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GameActionLog{}).
		Where("game_id = ?", gameID).
		Count(&count).Error
	return count, err
}

// WithTx 使用事务
func (r *gameActionLogRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameActionLogRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// GameStateSnapshotRepository 对局状态快照仓储接口
type GameStateSnapshotRepository interface {
	BaseRepository
	Create(ctx context.Context, snapshot *models.GameStateSnapshot) error
	FindLatest(ctx context.Context, gameID string) (*models.GameStateSnapshot, error)
	FindByGame(ctx context.Context, gameID string, p *Pagination) ([]*models.GameStateSnapshot, error)
	DeleteByGame(ctx context.Context, gameID string) error
}

// gameStateSnapshotRepo 对局状态快照仓储实现
type gameStateSnapshotRepo struct {
	*BaseRepo
}

// NewGameStateSnapshotRepository 创建对局状态快照仓储
func NewGameStateSnapshotRepository(db *gorm.DB) GameStateSnapshotRepository {
	return &gameStateSnapshotRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 追加状态快照
func (r *gameStateSnapshotRepo) Create(ctx context.Context, snapshot *models.GameStateSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

// FindLatest 查找对局最新快照
func (r *gameStateSnapshotRepo) FindLatest(ctx context.Context, gameID string) (*models.GameStateSnapshot, error) {
	var snapshot models.GameStateSnapshot
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("id desc").
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// FindByGame 查找对局全部快照（按时间倒序，分页）
func (r *gameStateSnapshotRepo) FindByGame(ctx context.Context, gameID string, p *Pagination) ([]*models.GameStateSnapshot, error) {
	var snapshots []*models.GameStateSnapshot

	r.db.WithContext(ctx).
		Model(&models.GameStateSnapshot{}).
		Where("game_id = ?", gameID).
		Count(&p.Total)

	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("id desc").
		Scopes(Paginate(p)).
		Find(&snapshots).Error

	return snapshots, err
}

// DeleteByGame 删除对局的全部快照（对局归档后清理）
func (r *gameStateSnapshotRepo) DeleteByGame(ctx context.Context, gameID string) error {
	return r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Delete(&models.GameStateSnapshot{}).Error
}

// WithTx 使用事务
func (r *gameStateSnapshotRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameStateSnapshotRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
