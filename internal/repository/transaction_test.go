package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/card-battle/internal/models"
)

func TestTransactionManager_Commit(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	CreateTestRoom(t, db, "room-001", "player-1")

	// 成员加入与计数更新在同一事务中
	err := tm.WithTransaction(ctx, func(tx *Transaction) error {
		if err := tx.RoomMember().Create(ctx, &models.RoomMember{
			RoomID:   "room-001",
			PlayerID: "player-2",
		}); err != nil {
			return err
		}
		return tx.Room().UpdateByRoomID(ctx, "room-001", map[string]interface{}{
			"current_players": 2,
		})
	})
	require.NoError(t, err)

	room, err := NewRoomRepository(db).FindByRoomID(ctx, "room-001")
	require.NoError(t, err)
	assert.Equal(t, 2, room.CurrentPlayers)
	assert.Len(t, room.Members, 2)
}

func TestTransactionManager_RollbackOnError(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	CreateTestRoom(t, db, "room-001", "player-1")

	boom := errors.New("boom")
	err := tm.WithTransaction(ctx, func(tx *Transaction) error {
		if err := tx.RoomMember().Create(ctx, &models.RoomMember{
			RoomID:   "room-001",
			PlayerID: "player-2",
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// 事务回滚后成员未写入
	count, err := NewRoomMemberRepository(db).CountByRoom(ctx, "room-001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTransactionManager_SessionCreationAtomic(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	CreateTestRoom(t, db, "room-001", "player-1", "player-2")

	// 开局：会话、玩家、卡牌、房间翻转一次提交
	err := tm.WithTransaction(ctx, func(tx *Transaction) error {
		if err := tx.GameSession().Create(ctx, &models.GameSession{
			GameID:      "game-001",
			RoomID:      "room-001",
			Status:      models.SessionStatusActive,
			CurrentTurn: 1,
		}); err != nil {
			return err
		}
		if err := tx.GamePlayer().CreateBatch(ctx, []*models.GamePlayer{
			{GameID: "game-001", PlayerID: "player-1", PlayerIndex: 0, LifeTotal: 20},
			{GameID: "game-001", PlayerID: "player-2", PlayerIndex: 1, LifeTotal: 20},
		}); err != nil {
			return err
		}
		return tx.Room().UpdateByRoomID(ctx, "room-001", map[string]interface{}{
			"status": models.RoomStatusInProgress,
		})
	})
	require.NoError(t, err)

	session, err := NewGameSessionRepository(db).FindByGameID(ctx, "game-001")
	require.NoError(t, err)
	assert.Len(t, session.Players, 2)

	room, err := NewRoomRepository(db).FindByRoomID(ctx, "room-001")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusInProgress, room.Status)
}

func TestTransaction_DoubleCommit(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	tx, err := tm.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.Commit())
	assert.Error(t, tx.Commit())
	assert.Error(t, tx.Rollback())
}

func TestTransaction_PanicSafety(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	CreateTestRoom(t, db, "room-001", "player-1")

	func() {
		defer func() { recover() }()
		tm.WithTransaction(ctx, func(tx *Transaction) error {
			tx.RoomMember().Create(ctx, &models.RoomMember{
				RoomID:   "room-001",
				PlayerID: "player-2",
			})
			panic("boom")
		})
	}()

	// panic 后 defer 回滚，成员未写入
	count, err := NewRoomMemberRepository(db).CountByRoom(ctx, "room-001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
