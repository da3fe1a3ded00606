package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/card-battle/internal/models"
)

func TestRoomRepository_Create(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := &models.Room{
		RoomID:     "room-001",
		Name:       "测试房间",
		Status:     models.RoomStatusWaiting,
		MaxPlayers: 4,
		CreatedBy:  "player-1",
	}
	err := repo.Create(ctx, room)
	require.NoError(t, err)
	assert.NotZero(t, room.ID)

	found, err := repo.FindByRoomID(ctx, "room-001")
	require.NoError(t, err)
	assert.Equal(t, "测试房间", found.Name)
	assert.Equal(t, models.RoomStatusWaiting, found.Status)
}

func TestRoomRepository_UpdateByRoomID(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	CreateTestRoom(t, db, "room-001", "player-1")

	err := repo.UpdateByRoomID(ctx, "room-001", map[string]interface{}{
		"status":          models.RoomStatusInProgress,
		"current_players": 2,
	})
	require.NoError(t, err)

	found, err := repo.FindByRoomID(ctx, "room-001")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusInProgress, found.Status)
	assert.Equal(t, 2, found.CurrentPlayers)
}

func TestRoomRepository_FindByRoomID_WithMembers(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	CreateTestRoom(t, db, "room-001", "player-1", "player-2", "player-3")

	found, err := repo.FindByRoomID(ctx, "room-001")
	require.NoError(t, err)
	require.Len(t, found.Members, 3)
	// 成员按加入顺序返回
	assert.Equal(t, "player-1", found.Members[0].PlayerID)
	assert.Equal(t, "player-2", found.Members[1].PlayerID)
	assert.Equal(t, "player-3", found.Members[2].PlayerID)
}

func TestRoomRepository_FindByStatus(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		CreateTestRoom(t, db, fmt.Sprintf("room-%03d", i), "player-1")
	}
	err := repo.UpdateByRoomID(ctx, "room-002", map[string]interface{}{
		"status": models.RoomStatusInProgress,
	})
	require.NoError(t, err)

	p := NewPagination(1, 10)
	waiting, err := repo.FindByStatus(ctx, models.RoomStatusWaiting, p)
	require.NoError(t, err)
	assert.Len(t, waiting, 2)
	assert.Equal(t, int64(2), p.Total)

	count, err := repo.CountByStatus(ctx, models.RoomStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRoomRepository_List_Pagination(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		CreateTestRoom(t, db, fmt.Sprintf("room-%03d", i), "player-1")
	}

	p := NewPagination(2, 10)
	rooms, err := repo.List(ctx, p)
	require.NoError(t, err)
	assert.Len(t, rooms, 5)
	assert.Equal(t, int64(15), p.Total)
}

func TestRoomMemberRepository_CreateAndFind(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewRoomMemberRepository(db)
	ctx := context.Background()

	CreateTestRoom(t, db, "room-001")

	member := &models.RoomMember{
		RoomID:   "room-001",
		PlayerID: "player-1",
		DeckID:   "starter",
		IsReady:  models.ReadyStatusNotReady,
	}
	err := repo.Create(ctx, member)
	require.NoError(t, err)
	assert.False(t, member.JoinedAt.IsZero())

	found, err := repo.Find(ctx, "room-001", "player-1")
	require.NoError(t, err)
	assert.Equal(t, "starter", found.DeckID)
	assert.Equal(t, models.ReadyStatusNotReady, found.IsReady)
}

func TestRoomMemberRepository_DuplicateJoin(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewRoomMemberRepository(db)
	ctx := context.Background()

	CreateTestRoom(t, db, "room-001", "player-1")

	// 同一玩家重复加入违反唯一索引
	err := repo.Create(ctx, &models.RoomMember{
		RoomID:   "room-001",
		PlayerID: "player-1",
	})
	assert.Error(t, err)
}

func TestRoomMemberRepository_UpdateReady(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewRoomMemberRepository(db)
	ctx := context.Background()

	CreateTestRoom(t, db, "room-001", "player-1", "player-2")

	err := repo.UpdateReady(ctx, "room-001", "player-1", models.ReadyStatusReady)
	require.NoError(t, err)

	found, err := repo.Find(ctx, "room-001", "player-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReadyStatusReady, found.IsReady)

	// 另一名成员不受影响
	other, err := repo.Find(ctx, "room-001", "player-2")
	require.NoError(t, err)
	assert.Equal(t, models.ReadyStatusNotReady, other.IsReady)
}

func TestRoomMemberRepository_Delete(t *testing.T) {
	db := TestDB(t)
	defer CleanupTestDB(db)
	repo := NewRoomMemberRepository(db)
	ctx := context.Background()

	CreateTestRoom(t, db, "room-001", "player-1", "player-2")

	err := repo.Delete(ctx, "room-001", "player-1")
	require.NoError(t, err)

	count, err := repo.CountByRoom(ctx, "room-001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 物理删除后同一玩家可以重新加入
	err = repo.Create(ctx, &models.RoomMember{
		RoomID:   "room-001",
		PlayerID: "player-1",
	})
	require.NoError(t, err)
}
