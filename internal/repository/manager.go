package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	// 事务管理器
	txManager TransactionManager

	// 仓储实例（使用懒加载）
	roomOnce sync.Once
	room     RoomRepository

	roomMemberOnce sync.Once
	roomMember     RoomMemberRepository

	gameSessionOnce sync.Once
	gameSession     GameSessionRepository

	gamePlayerOnce sync.Once
	gamePlayer     GamePlayerRepository

	gameCardOnce sync.Once
	gameCard     GameCardRepository

	actionLogOnce sync.Once
	actionLog     GameActionLogRepository

	snapshotOnce sync.Once
	snapshot     GameStateSnapshotRepository

	catalogCardOnce sync.Once
	catalogCard     CatalogCardRepository

	deckCardOnce sync.Once
	deckCard     DeckCardRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		db:        db,
		txManager: NewTransactionManager(db),
	}
}

// GetDB 获取数据库实例
func (m *Manager) GetDB() *gorm.DB {
	return m.db
}

// Transaction 获取事务管理器
func (m *Manager) Transaction() TransactionManager {
	return m.txManager
}

// WithTransaction 在事务中执行操作
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	return m.txManager.WithTransaction(ctx, fn)
}

// Room 获取房间仓储
func (m *Manager) Room() RoomRepository {
	m.roomOnce.Do(func() {
		m.room = NewRoomRepository(m.db)
	})
	return m.room
}

// RoomMember 获取房间成员仓储
func (m *Manager) RoomMember() RoomMemberRepository {
	m.roomMemberOnce.Do(func() {
		m.roomMember = NewRoomMemberRepository(m.db)
	})
	return m.roomMember
}

// GameSession 获取游戏会话仓储
func (m *Manager) GameSession() GameSessionRepository {
	m.gameSessionOnce.Do(func() {
		m.gameSession = NewGameSessionRepository(m.db)
	})
	return m.gameSession
}

// GamePlayer 获取对局玩家仓储
func (m *Manager) GamePlayer() GamePlayerRepository {
	m.gamePlayerOnce.Do(func() {
		m.gamePlayer = NewGamePlayerRepository(m.db)
	})
	return m.gamePlayer
}

// GameCard 获取对局卡牌仓储
func (m *Manager) GameCard() GameCardRepository {
	m.gameCardOnce.Do(func() {
		m.gameCard = NewGameCardRepository(m.db)
	})
	return m.gameCard
}

// ActionLog 获取行动日志仓储
func (m *Manager) ActionLog() GameActionLogRepository {
	m.actionLogOnce.Do(func() {
		m.actionLog = NewGameActionLogRepository(m.db)
	})
	return m.actionLog
}

// Snapshot 获取状态快照仓储
func (m *Manager) Snapshot() GameStateSnapshotRepository {
	m.snapshotOnce.Do(func() {
		m.snapshot = NewGameStateSnapshotRepository(m.db)
	})
	return m.snapshot
}

// CatalogCard 获取卡牌图鉴仓储
func (m *Manager) CatalogCard() CatalogCardRepository {
	m.catalogCardOnce.Do(func() {
		m.catalogCard = NewCatalogCardRepository(m.db)
	})
	return m.catalogCard
}

// DeckCard 获取牌组清单仓储
func (m *Manager) DeckCard() DeckCardRepository {
	m.deckCardOnce.Do(func() {
		m.deckCard = NewDeckCardRepository(m.db)
	})
	return m.deckCard
}
