package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/card-battle/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 创建测试数据库
func TestDB(t *testing.T) *gorm.DB {
	// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 自动迁移所有模型
	err = db.AutoMigrate(
		// 房间系统
		&models.Room{},
		&models.RoomMember{},

		// 对局系统
		&models.GameSession{},
		&models.GamePlayer{},
		&models.GameCard{},
		&models.GameActionLog{},
		&models.GameStateSnapshot{},

		// 卡牌图鉴
		&models.CatalogCard{},
		&models.DeckCard{},
	)
	require.NoError(t, err)

	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SeedTestCatalog 创建测试图鉴与starter牌组
// 牌组共30张，循环引用5张图鉴卡牌
func SeedTestCatalog(t *testing.T, db *gorm.DB) {
	cards := []*models.CatalogCard{
		{
			CardID:     "c-goblin",
			Name:       "哥布林斥候",
			Type:       "creature",
			EnergyCost: 1,
			ManaCost:   models.JSONMap{"red": float64(1)},
			Power:      2,
			Toughness:  1,
		},
		{
			CardID:     "c-knight",
			Name:       "白银骑士",
			Type:       "creature",
			EnergyCost: 2,
			ManaCost:   models.JSONMap{"white": float64(1), "generic": float64(1)},
			Power:      2,
			Toughness:  2,
		},
		{
			CardID:     "c-bolt",
			Name:       "闪电箭",
			Type:       "spell",
			EnergyCost: 1,
			ManaCost:   models.JSONMap{"red": float64(1)},
		},
		{
			CardID:         "c-mountain",
			Name:           "山脉",
			Type:           "land",
			ProducedColors: "red",
		},
		{
			CardID:         "c-plains",
			Name:           "平原",
			Type:           "land",
			ProducedColors: "white",
		},
	}
	require.NoError(t, db.Create(&cards).Error)

	deck := make([]*models.DeckCard, 0, 30)
	for i := 0; i < 30; i++ {
		deck = append(deck, &models.DeckCard{
			DeckID:        "starter",
			CatalogCardID: cards[i%len(cards)].CardID,
			Position:      i,
		})
	}
	require.NoError(t, db.Create(&deck).Error)
}

// CreateTestRoom 创建测试房间
func CreateTestRoom(t *testing.T, db *gorm.DB, roomID string, memberIDs ...string) *models.Room {
	room := &models.Room{
		RoomID:         roomID,
		Name:           "测试房间 " + roomID,
		Status:         models.RoomStatusWaiting,
		MaxPlayers:     4,
		CurrentPlayers: len(memberIDs),
	}
	if len(memberIDs) > 0 {
		room.CreatedBy = memberIDs[0]
	}
	require.NoError(t, db.Create(room).Error)

	for i, playerID := range memberIDs {
		member := &models.RoomMember{
			RoomID:   roomID,
			PlayerID: playerID,
			DeckID:   "starter",
			IsReady:  models.ReadyStatusNotReady,
			JoinedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, db.Create(member).Error)
	}

	return room
}

// CreateTestSession 创建测试对局（含玩家，不含卡牌）
func CreateTestSession(t *testing.T, db *gorm.DB, gameID, roomID string, playerIDs ...string) *models.GameSession {
	now := time.Now()
	session := &models.GameSession{
		GameID:      gameID,
		RoomID:      roomID,
		Status:      models.SessionStatusActive,
		CurrentTurn: 1,
		Phase:       "main",
		StartedAt:   now,
	}
	require.NoError(t, db.Create(session).Error)

	for i, playerID := range playerIDs {
		player := &models.GamePlayer{
			GameID:      gameID,
			PlayerID:    playerID,
			DeckID:      "starter",
			PlayerIndex: i,
			LifeTotal:   20,
			Energy:      1,
			MaxEnergy:   1,
			IsActive:    i == 0,
		}
		require.NoError(t, db.Create(player).Error)
	}

	return session
}

// CreateTestCards 为对局玩家批量创建区域卡牌
func CreateTestCards(t *testing.T, db *gorm.DB, gameID, ownerID, location string, count int) []*models.GameCard {
	cards := make([]*models.GameCard, 0, count)
	for i := 0; i < count; i++ {
		cards = append(cards, &models.GameCard{
			GameID:        gameID,
			CardID:        fmt.Sprintf("%s-%s-%s-%d", gameID, ownerID, location, i),
			CatalogCardID: "c-goblin",
			OwnerID:       ownerID,
			ControllerID:  ownerID,
			Location:      location,
			ZoneIndex:     i,
		})
	}
	require.NoError(t, db.Create(&cards).Error)
	return cards
}
