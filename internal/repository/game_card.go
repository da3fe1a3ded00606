package repository

import (
	"context"

	"github.com/wfunc/card-battle/internal/models"
	"gorm.io/gorm"
)

// GameCardRepository 对局卡牌仓储接口
type GameCardRepository interface {
	BaseRepository
	Create(ctx context.Context, card *models.GameCard) error
	CreateBatch(ctx context.Context, cards []*models.GameCard) error
	Update(ctx context.Context, card *models.GameCard) error
	UpdateByCardID(ctx context.Context, gameID, cardID string, updates map[string]interface{}) error
	FindByCardID(ctx context.Context, gameID, cardID string) (*models.GameCard, error)
	FindByGame(ctx context.Context, gameID string) ([]*models.GameCard, error)
	FindByLocation(ctx context.Context, gameID, ownerID, location string) ([]*models.GameCard, error)
	CountByLocation(ctx context.Context, gameID, ownerID, location string) (int64, error)
	MaxZoneIndex(ctx context.Context, gameID, ownerID, location string) (int, error)
}

// gameCardRepo 对局卡牌仓储实现
type gameCardRepo struct {
	*BaseRepo
}

// NewGameCardRepository 创建对局卡牌仓储
func NewGameCardRepository(db *gorm.DB) GameCardRepository {
	return &gameCardRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建卡牌
func (r *gameCardRepo) Create(ctx context.Context, card *models.GameCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// CreateBatch 批量创建卡牌（开局实例化整副牌库）
func (r *gameCardRepo) CreateBatch(ctx context.Context, cards []*models.GameCard) error {
	if len(cards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(cards, 100).Error
}

// Update 更新卡牌
func (r *gameCardRepo) Update(ctx context.Context, card *models.GameCard) error {
	return r.db.WithContext(ctx).Save(card).Error
}

// UpdateByCardID 根据卡牌实例ID更新
func (r *gameCardRepo) UpdateByCardID(ctx context.Context, gameID, cardID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.GameCard{}).
		Where("game_id = ? AND card_id = ?", gameID, cardID).
		Updates(updates).Error
}

// FindByCardID 查找卡牌实例
func (r *gameCardRepo) FindByCardID(ctx context.Context, gameID, cardID string) (*models.GameCard, error) {
	var card models.GameCard
	err := r.db.WithContext(ctx).
		Where("game_id = ? AND card_id = ?", gameID, cardID).
		First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByGame 查找对局全部卡牌
func (r *gameCardRepo) FindByGame(ctx context.Context, gameID string) ([]*models.GameCard, error) {
	var cards []*models.GameCard
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("owner_id asc, location asc, zone_index asc").
		Find(&cards).Error
	return cards, err
}

// FindByLocation 查找指定区域的卡牌（按区域顺序）
func (r *gameCardRepo) FindByLocation(ctx context.Context, gameID, ownerID, location string) ([]*models.GameCard, error) {
	var cards []*models.GameCard
	err := r.db.WithContext(ctx).
		Where("game_id = ? AND owner_id = ? AND location = ?", gameID, ownerID, location).
		Order("zone_index asc").
		Find(&cards).Error
	return cards, err
}

// CountByLocation 统计指定区域的卡牌数
// 手牌数/牌库数等派生计数一律以此为准，不信任冗余字段
func (r *gameCardRepo) CountByLocation(ctx context.Context, gameID, ownerID, location string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GameCard{}).
		Where("game_id = ? AND owner_id = ? AND location = ?", gameID, ownerID, location).
		Count(&count).Error
	return count, err
}

// MaxZoneIndex 获取区域内最大序号，用于追加到区域末尾
func (r *gameCardRepo) MaxZoneIndex(ctx context.Context, gameID, ownerID, location string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.GameCard{}).
		Where("game_id = ? AND owner_id = ? AND location = ?", gameID, ownerID, location).
		Select("MAX(zone_index)").
		Scan(&max).Error
	if err != nil {
		return -1, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

// WithTx 使用事务
func (r *gameCardRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameCardRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
