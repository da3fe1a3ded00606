package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/card-battle/internal/models"
)

func TestGameSessionRepository_Create(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	session := CreateTestSession(t, db, "game-001", "room-001", "player-1", "player-2")
	assert.NotZero(t, session.ID)

	found, err := repo.FindByGameID(ctx, "game-001")
	require.NoError(t, err)
	assert.Equal(t, "room-001", found.RoomID)
	assert.Equal(t, models.SessionStatusActive, found.Status)
	assert.Equal(t, 1, found.CurrentTurn)
}

func TestGameSessionRepository_FindByGameID_PlayersOrdered(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	CreateTestSession(t, db, "game-001", "room-001", "player-b", "player-a", "player-c")

	found, err := repo.FindByGameID(ctx, "game-001")
	require.NoError(t, err)
	require.Len(t, found.Players, 3)
	// 玩家按座次返回，座次按加入顺序分配
	assert.Equal(t, 0, found.Players[0].PlayerIndex)
	assert.Equal(t, "player-b", found.Players[0].PlayerID)
	assert.Equal(t, "player-a", found.Players[1].PlayerID)
	assert.Equal(t, "player-c", found.Players[2].PlayerID)
}

func TestGameSessionRepository_FindActiveByRoomID(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	// 无对局时返回 nil 而非错误
	session, err := repo.FindActiveByRoomID(ctx, "room-001")
	require.NoError(t, err)
	assert.Nil(t, session)

	CreateTestSession(t, db, "game-001", "room-001", "player-1", "player-2")

	session, err = repo.FindActiveByRoomID(ctx, "room-001")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "game-001", session.GameID)

	// 对局结束后不再命中
	err = repo.EndSession(ctx, "game-001", models.SessionStatusFinished, "player-1")
	require.NoError(t, err)

	session, err = repo.FindActiveByRoomID(ctx, "room-001")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestGameSessionRepository_UpdateByGameID(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	CreateTestSession(t, db, "game-001", "room-001", "player-1", "player-2")

	err := repo.UpdateByGameID(ctx, "game-001", map[string]interface{}{
		"current_turn":         3,
		"current_player_index": 1,
		"phase":                "end",
	})
	require.NoError(t, err)

	found, err := repo.FindByGameID(ctx, "game-001")
	require.NoError(t, err)
	assert.Equal(t, 3, found.CurrentTurn)
	assert.Equal(t, 1, found.CurrentPlayerIndex)
	assert.Equal(t, "end", found.Phase)
}

func TestGameSessionRepository_EndSession(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	CreateTestSession(t, db, "game-001", "room-001", "player-1", "player-2")

	err := repo.EndSession(ctx, "game-001", models.SessionStatusFinished, "player-2")
	require.NoError(t, err)

	found, err := repo.FindByGameID(ctx, "game-001")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusFinished, found.Status)
	assert.Equal(t, "player-2", found.WinnerID)
	require.NotNil(t, found.FinishedAt)
}

func TestGameSessionRepository_EndSession_NoWinner(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	CreateTestSession(t, db, "game-001", "room-001", "player-1", "player-2")

	// 取消对局时没有胜者
	err := repo.EndSession(ctx, "game-001", models.SessionStatusCancelled, "")
	require.NoError(t, err)

	found, err := repo.FindByGameID(ctx, "game-001")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCancelled, found.Status)
	assert.Empty(t, found.WinnerID)
	require.NotNil(t, found.FinishedAt)
}

func TestGameSessionRepository_ListActive(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		CreateTestSession(t, db, fmt.Sprintf("game-%03d", i), fmt.Sprintf("room-%03d", i), "player-1", "player-2")
	}
	err := repo.EndSession(ctx, "game-001", models.SessionStatusFinished, "player-1")
	require.NoError(t, err)

	sessions, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestGamePlayerRepository_UpdateByGamePlayer(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewGamePlayerRepository(db)
	ctx := context.Background()

	CreateTestSession(t, db, "game-001", "room-001", "player-1", "player-2")

	err := repo.UpdateByGamePlayer(ctx, "game-001", "player-1", map[string]interface{}{
		"energy":     3,
		"max_energy": 3,
		"life_total": 17,
	})
	require.NoError(t, err)

	found, err := repo.Find(ctx, "game-001", "player-1")
	require.NoError(t, err)
	assert.Equal(t, 3, found.Energy)
	assert.Equal(t, 3, found.MaxEnergy)
	assert.Equal(t, 17, found.LifeTotal)

	// 另一名玩家不受影响
	other, err := repo.Find(ctx, "game-001", "player-2")
	require.NoError(t, err)
	assert.Equal(t, 1, other.Energy)
	assert.Equal(t, 20, other.LifeTotal)
}

func TestGamePlayerRepository_FindByGame(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewGamePlayerRepository(db)
	ctx := context.Background()

	CreateTestSession(t, db, "game-001", "room-001", "player-1", "player-2")

	players, err := repo.FindByGame(ctx, "game-001")
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, 0, players[0].PlayerIndex)
	assert.Equal(t, 1, players[1].PlayerIndex)
}
