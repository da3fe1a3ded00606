package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// TransactionManager 事务管理器接口
type TransactionManager interface {
	// Begin 开始事务
	Begin(ctx context.Context) (*Transaction, error)
	// WithTransaction 在事务中执行函数
	WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error
}

// Transaction 事务包装器
// 对局与房间的状态变更必须整体提交或整体回滚，
// 业务代码通过这里的仓储访问器拿到绑定在同一事务上的仓储实例
type Transaction struct {
	tx         *gorm.DB
	ctx        context.Context
	committed  bool
	rolledback bool

	// 事务中的仓储实例
	room       RoomRepository
	roomMember RoomMemberRepository

	gameSession GameSessionRepository
	gamePlayer  GamePlayerRepository
	gameCard    GameCardRepository

	actionLog GameActionLogRepository
	snapshot  GameStateSnapshotRepository

	catalogCard CatalogCardRepository
	deckCard    DeckCardRepository
}

// txManager 事务管理器实现
type txManager struct {
	db *gorm.DB
}

// NewTransactionManager 创建事务管理器
func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &txManager{db: db}
}

// Begin 开始事务
func (m *txManager) Begin(ctx context.Context) (*Transaction, error) {
	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	return &Transaction{
		tx:  tx,
		ctx: ctx,
	}, nil
}

// WithTransaction 在事务中执行函数
func (m *txManager) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}

	// 确保事务被处理
	defer func() {
		if !tx.committed && !tx.rolledback {
			tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if t.committed {
		return fmt.Errorf("事务已提交")
	}
	if t.rolledback {
		return fmt.Errorf("事务已回滚")
	}

	if err := t.tx.Commit().Error; err != nil {
		return err
	}

	t.committed = true
	return nil
}

// Rollback 回滚事务
func (t *Transaction) Rollback() error {
	if t.committed {
		return fmt.Errorf("事务已提交，无法回滚")
	}
	if t.rolledback {
		return fmt.Errorf("事务已回滚")
	}

	if err := t.tx.Rollback().Error; err != nil {
		return err
	}

	t.rolledback = true
	return nil
}

// GetDB 获取事务中的数据库实例
func (t *Transaction) GetDB() *gorm.DB {
	return t.tx
}

// Room 获取事务中的房间仓储
func (t *Transaction) Room() RoomRepository {
	if t.room == nil {
		t.room = &roomRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.room
}

// RoomMember 获取事务中的房间成员仓储
func (t *Transaction) RoomMember() RoomMemberRepository {
	if t.roomMember == nil {
		t.roomMember = &roomMemberRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.roomMember
}

// GameSession 获取事务中的游戏会话仓储
func (t *Transaction) GameSession() GameSessionRepository {
	if t.gameSession == nil {
		t.gameSession = &gameSessionRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.gameSession
}

// GamePlayer 获取事务中的对局玩家仓储
func (t *Transaction) GamePlayer() GamePlayerRepository {
	if t.gamePlayer == nil {
		t.gamePlayer = &gamePlayerRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.gamePlayer
}

// GameCard 获取事务中的对局卡牌仓储
func (t *Transaction) GameCard() GameCardRepository {
	if t.gameCard == nil {
		t.gameCard = &gameCardRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.gameCard
}

// ActionLog 获取事务中的行动日志仓储
func (t *Transaction) ActionLog() GameActionLogRepository {
	if t.actionLog == nil {
		t.actionLog = &gameActionLogRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.actionLog
}

// Snapshot 获取事务中的状态快照仓储
func (t *Transaction) Snapshot() GameStateSnapshotRepository {
	if t.snapshot == nil {
		t.snapshot = &gameStateSnapshotRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.snapshot
}

// CatalogCard 获取事务中的卡牌图鉴仓储
func (t *Transaction) CatalogCard() CatalogCardRepository {
	if t.catalogCard == nil {
		t.catalogCard = &catalogCardRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.catalogCard
}

// DeckCard 获取事务中的牌组清单仓储
func (t *Transaction) DeckCard() DeckCardRepository {
	if t.deckCard == nil {
		t.deckCard = &deckCardRepo{
			BaseRepo: &BaseRepo{db: t.tx},
		}
	}
	return t.deckCard
}

// SavePoint 创建保存点
func (t *Transaction) SavePoint(name string) error {
	return t.tx.SavePoint(name).Error
}

// RollbackToSavePoint 回滚到保存点
func (t *Transaction) RollbackToSavePoint(name string) error {
	return t.tx.RollbackTo(name).Error
}
