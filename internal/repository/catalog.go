package repository

import (
	"context"

	"github.com/wfunc/card-battle/internal/models"
	"gorm.io/gorm"
)

// CatalogCardRepository 卡牌图鉴仓储接口
type CatalogCardRepository interface {
	BaseRepository
	Create(ctx context.Context, card *models.CatalogCard) error
	CreateBatch(ctx context.Context, cards []*models.CatalogCard) error
	FindByCardID(ctx context.Context, cardID string) (*models.CatalogCard, error)
	FindByCardIDs(ctx context.Context, cardIDs []string) ([]*models.CatalogCard, error)
	List(ctx context.Context, p *Pagination) ([]*models.CatalogCard, error)
	Count(ctx context.Context) (int64, error)
}

// catalogCardRepo 卡牌图鉴仓储实现
type catalogCardRepo struct {
	*BaseRepo
}

// NewCatalogCardRepository 创建卡牌图鉴仓储
func NewCatalogCardRepository(db *gorm.DB) CatalogCardRepository {
	return &catalogCardRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建图鉴卡牌
func (r *catalogCardRepo) Create(ctx context.Context, card *models.CatalogCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// CreateBatch 批量导入图鉴（种子数据）
func (r *catalogCardRepo) CreateBatch(ctx context.Context, cards []*models.CatalogCard) error {
	if len(cards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(cards, 100).Error
}

// FindByCardID 根据卡牌编号查找
func (r *catalogCardRepo) FindByCardID(ctx context.Context, cardID string) (*models.CatalogCard, error) {
	var card models.CatalogCard
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByCardIDs 批量查找图鉴卡牌
func (r *catalogCardRepo) FindByCardIDs(ctx context.Context, cardIDs []string) ([]*models.CatalogCard, error) {
	var cards []*models.CatalogCard
	if len(cardIDs) == 0 {
		return cards, nil
	}
	err := r.db.WithContext(ctx).
		Where("card_id IN ?", cardIDs).
		Find(&cards).Error
	return cards, err
}

// List 列出图鉴（分页）
func (r *catalogCardRepo) List(ctx context.Context, p *Pagination) ([]*models.CatalogCard, error) {
	var cards []*models.CatalogCard

	r.db.WithContext(ctx).
		Model(&models.CatalogCard{}).
		Count(&p.Total)

	err := r.db.WithContext(ctx).
		Order("card_id asc").
		Scopes(Paginate(p)).
		Find(&cards).Error

	return cards, err
}

// Count 统计图鉴卡牌数
func (r *catalogCardRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CatalogCard{}).
		Count(&count).Error
	return count, err
}

// WithTx 使用事务
func (r *catalogCardRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &catalogCardRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// DeckCardRepository 牌组清单仓储接口
type DeckCardRepository interface {
	BaseRepository
	CreateBatch(ctx context.Context, cards []*models.DeckCard) error
	FindByDeckID(ctx context.Context, deckID string) ([]*models.DeckCard, error)
	CountByDeckID(ctx context.Context, deckID string) (int64, error)
}

// deckCardRepo 牌组清单仓储实现
type deckCardRepo struct {
	*BaseRepo
}

// NewDeckCardRepository 创建牌组清单仓储
func NewDeckCardRepository(db *gorm.DB) DeckCardRepository {
	return &deckCardRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// CreateBatch 批量写入牌组清单
func (r *deckCardRepo) CreateBatch(ctx context.Context, cards []*models.DeckCard) error {
	if len(cards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(cards, 100).Error
}

// FindByDeckID 查找牌组清单（按牌组内位置）
func (r *deckCardRepo) FindByDeckID(ctx context.Context, deckID string) ([]*models.DeckCard, error) {
	var cards []*models.DeckCard
	err := r.db.WithContext(ctx).
		Where("deck_id = ?", deckID).
		Order("position asc").
		Find(&cards).Error
	return cards, err
}

// CountByDeckID 统计牌组卡牌数
func (r *deckCardRepo) CountByDeckID(ctx context.Context, deckID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DeckCard{}).
		Where("deck_id = ?", deckID).
		Count(&count).Error
	return count, err
}

// WithTx 使用事务
func (r *deckCardRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &deckCardRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
