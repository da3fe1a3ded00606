package repository

import (
	"context"
	"fmt"

	"github.com/wfunc/card-battle/internal/logger"
	"github.com/wfunc/card-battle/internal/models"
	"go.uber.org/zap"
)

// defaultCatalog 开发环境的内置图鉴
// 生产部署通常由运营工具导入图鉴，这里只保证空库也能开局
var defaultCatalog = []*models.CatalogCard{
	{CardID: "c-goblin", Name: "哥布林斥候", Type: "creature", EnergyCost: 1,
		ManaCost: models.JSONMap{"red": float64(1)}, Power: 2, Toughness: 1},
	{CardID: "c-knight", Name: "白银骑士", Type: "creature", EnergyCost: 2,
		ManaCost: models.JSONMap{"white": float64(1), "generic": float64(1)}, Power: 2, Toughness: 2},
	{CardID: "c-wurm", Name: "碧绿巨虫", Type: "creature", EnergyCost: 4,
		ManaCost: models.JSONMap{"green": float64(2), "generic": float64(2)}, Power: 5, Toughness: 4},
	{CardID: "c-bolt", Name: "闪电箭", Type: "spell", EnergyCost: 1,
		ManaCost: models.JSONMap{"red": float64(1)}},
	{CardID: "c-growth", Name: "自然滋长", Type: "spell", EnergyCost: 1,
		ManaCost: models.JSONMap{"green": float64(1)}},
	{CardID: "c-mountain", Name: "山脉", Type: "land", ProducedColors: "red"},
	{CardID: "c-plains", Name: "平原", Type: "land", ProducedColors: "white"},
	{CardID: "c-forest", Name: "森林", Type: "land", ProducedColors: "green"},
}

// EnsureDefaultCatalog 保证默认牌组可用
// 图鉴非空时不做任何事；否则写入内置图鉴和一套30张的默认牌组
func EnsureDefaultCatalog(ctx context.Context, m *Manager, deckID string) error {
	if deckID == "" {
		return fmt.Errorf("默认牌组ID不能为空")
	}

	count, err := m.CatalogCard().Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log := logger.GetModuleLogger("repository")
	log.Info("图鉴为空，写入内置图鉴", zap.String("deck_id", deckID))

	return m.WithTransaction(ctx, func(tx *Transaction) error {
		if err := tx.CatalogCard().CreateBatch(ctx, defaultCatalog); err != nil {
			return err
		}

		deck := make([]*models.DeckCard, 0, 30)
		for i := 0; i < 30; i++ {
			deck = append(deck, &models.DeckCard{
				DeckID:        deckID,
				CatalogCardID: defaultCatalog[i%len(defaultCatalog)].CardID,
				Position:      i,
			})
		}
		return tx.DeckCard().CreateBatch(ctx, deck)
	})
}
