package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/card-battle/internal/config"
	apperrors "github.com/wfunc/card-battle/internal/errors"
	"github.com/wfunc/card-battle/internal/event"
	"github.com/wfunc/card-battle/internal/game"
	"github.com/wfunc/card-battle/internal/models"
	"github.com/wfunc/card-battle/internal/repository"
	"github.com/wfunc/card-battle/internal/room"
	"gorm.io/gorm"
)

func newTestHandler(t *testing.T) (*RoomHandler, *Hub, *room.Registry, *gorm.DB) {
	db := repository.TestDB(t)
	t.Cleanup(func() { repository.CleanupTestDB(db) })
	repository.SeedTestCatalog(t, db)

	cfg := &config.GameConfig{
		OpeningHandSize: 7,
		MaxEnergy:       10,
		StartingLife:    20,
		MinPlayers:      2,
		MaxRooms:        1000,
		ChatMaxLength:   20,
		DefaultDeckID:   "starter",
	}
	repos := repository.NewManager(db)
	engine := game.NewEngine(repos, event.NewBus(), cfg)
	registry := room.NewRegistry(repos, engine, cfg)

	hub := NewHub()
	return NewRoomHandler(hub, registry, cfg), hub, registry, db
}

// control 构造控制消息JSON
func control(t *testing.T, msg ControlMessage) []byte {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return data
}

// joinClient 建立连接并完成join_room，消费掉connected事件
func joinClient(t *testing.T, h *RoomHandler, hub *Hub, roomID, playerID string) *Client {
	t.Helper()
	c := newTestClient(hub)
	h.HandleMessage(c, control(t, ControlMessage{Type: ControlJoinRoom, RoomID: roomID, PlayerID: playerID}))
	evt := recvEvent(t, c)
	require.Equal(t, EventConnected, evt.Type)
	require.Equal(t, StateJoined, c.State)
	return c
}

// assertErrorEvent 断言下一条事件是指定错误码的error事件
func assertErrorEvent(t *testing.T, c *Client, code apperrors.ErrorCode) {
	t.Helper()
	evt := recvEvent(t, c)
	require.Equal(t, EventError, evt.Type)
	data, ok := evt.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(code), data["code"])
}

func createRoom(t *testing.T, registry *room.Registry) string {
	t.Helper()
	r, err := registry.CreateRoom(context.Background(), "测试房间", 4, "creator")
	require.NoError(t, err)
	return r.RoomID
}

func TestRoomHandler_JoinFlow(t *testing.T) {
	h, hub, registry, _ := newTestHandler(t)
	roomID := createRoom(t, registry)

	a := newTestClient(hub)
	h.HandleMessage(a, control(t, ControlMessage{Type: ControlJoinRoom, RoomID: roomID, PlayerID: "player-1"}))

	evt := recvEvent(t, a)
	assert.Equal(t, EventConnected, evt.Type)
	data := evt.Data.(map[string]interface{})
	assert.Equal(t, roomID, data["roomId"])
	assert.Equal(t, "player-1", data["playerId"])
	assert.Equal(t, float64(1), data["currentPlayers"])
	assert.Equal(t, StateJoined, a.State)

	// 第二人加入：先到者收到player_joined，新到者只收connected
	b := newTestClient(hub)
	h.HandleMessage(b, control(t, ControlMessage{Type: ControlJoinRoom, RoomID: roomID, PlayerID: "player-2"}))

	assert.Equal(t, EventConnected, recvEvent(t, b).Type)
	assertNoEvent(t, b)

	joined := recvEvent(t, a)
	assert.Equal(t, EventPlayerJoined, joined.Type)
	assert.Equal(t, "player-2", joined.Data.(map[string]interface{})["playerId"])

	// 注册表侧成员已持久化
	r, err := registry.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	assert.Equal(t, 2, r.CurrentPlayers)
}

func TestRoomHandler_JoinErrors(t *testing.T) {
	h, hub, registry, _ := newTestHandler(t)
	roomID := createRoom(t, registry)

	c := newTestClient(hub)

	// 非法JSON
	h.HandleMessage(c, []byte("{not-json"))
	assertErrorEvent(t, c, apperrors.ErrMessageFormat)

	// 缺少必填字段
	h.HandleMessage(c, control(t, ControlMessage{Type: ControlJoinRoom, RoomID: roomID}))
	assertErrorEvent(t, c, apperrors.ErrInvalidParam)

	// 房间不存在
	h.HandleMessage(c, control(t, ControlMessage{Type: ControlJoinRoom, RoomID: "missing", PlayerID: "player-1"}))
	assertErrorEvent(t, c, apperrors.ErrRoomNotFound)
	assert.Equal(t, StateUnjoined, c.State)

	// 未加入时其它消息被拒绝
	h.HandleMessage(c, control(t, ControlMessage{Type: ControlReadyStatus, IsReady: true}))
	assertErrorEvent(t, c, apperrors.ErrNotJoined)
	h.HandleMessage(c, control(t, ControlMessage{Type: ControlChatMessage, Message: "hi"}))
	assertErrorEvent(t, c, apperrors.ErrNotJoined)

	// 未知消息类型
	h.HandleMessage(c, []byte(`{"type":"attack"}`))
	assertErrorEvent(t, c, apperrors.ErrMessageFormat)
}

func TestRoomHandler_DoubleJoinRejected(t *testing.T) {
	h, hub, registry, _ := newTestHandler(t)
	roomID := createRoom(t, registry)

	a := joinClient(t, h, hub, roomID, "player-1")

	h.HandleMessage(a, control(t, ControlMessage{Type: ControlJoinRoom, RoomID: roomID, PlayerID: "player-1"}))
	assertErrorEvent(t, a, apperrors.ErrAlreadyJoined)
	assert.Equal(t, StateJoined, a.State)
}

func TestRoomHandler_ReconnectExistingMember(t *testing.T) {
	h, hub, registry, _ := newTestHandler(t)
	roomID := createRoom(t, registry)

	// 玩家已是房间成员但连接是新的：允许重挂
	_, err := registry.JoinRoom(context.Background(), roomID, "player-1", "")
	require.NoError(t, err)

	c := newTestClient(hub)
	h.HandleMessage(c, control(t, ControlMessage{Type: ControlJoinRoom, RoomID: roomID, PlayerID: "player-1"}))

	evt := recvEvent(t, c)
	assert.Equal(t, EventConnected, evt.Type)
	assert.Equal(t, StateJoined, c.State)

	// 成员没有被重复插入
	r, err := registry.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.CurrentPlayers)
}

func TestRoomHandler_ReadyStatus(t *testing.T) {
	h, hub, registry, _ := newTestHandler(t)
	roomID := createRoom(t, registry)

	a := joinClient(t, h, hub, roomID, "player-1")
	b := joinClient(t, h, hub, roomID, "player-2")
	recvEvent(t, a) // player-2 的 player_joined

	h.HandleMessage(a, control(t, ControlMessage{Type: ControlReadyStatus, IsReady: true}))

	// 双方都收到广播，包括发送者自己
	for _, c := range []*Client{a, b} {
		evt := recvEvent(t, c)
		assert.Equal(t, EventReadyStatusChanged, evt.Type)
		data := evt.Data.(map[string]interface{})
		assert.Equal(t, "player-1", data["playerId"])
		assert.Equal(t, true, data["isReady"])
	}

	r, err := registry.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	for _, m := range r.Members {
		if m.PlayerID == "player-1" {
			assert.Equal(t, models.ReadyStatusReady, m.IsReady)
		}
	}
}

func TestRoomHandler_Chat(t *testing.T) {
	h, hub, registry, _ := newTestHandler(t)
	roomID := createRoom(t, registry)

	a := joinClient(t, h, hub, roomID, "player-1")
	b := joinClient(t, h, hub, roomID, "player-2")
	recvEvent(t, a)

	h.HandleMessage(a, control(t, ControlMessage{Type: ControlChatMessage, Message: "大家好"}))

	for _, c := range []*Client{a, b} {
		evt := recvEvent(t, c)
		assert.Equal(t, EventChatMessage, evt.Type)
		data := evt.Data.(map[string]interface{})
		assert.Equal(t, "player-1", data["playerId"])
		assert.Equal(t, "大家好", data["message"])
	}
}

func TestRoomHandler_ChatValidation(t *testing.T) {
	h, hub, registry, _ := newTestHandler(t)
	roomID := createRoom(t, registry)

	a := joinClient(t, h, hub, roomID, "player-1")
	b := joinClient(t, h, hub, roomID, "player-2")
	recvEvent(t, a)

	// 超长消息只给发送者回错误，不广播
	h.HandleMessage(a, control(t, ControlMessage{Type: ControlChatMessage, Message: strings.Repeat("啊", 21)}))
	assertErrorEvent(t, a, apperrors.ErrMessageTooLong)
	assertNoEvent(t, b)

	// 刚好到上限可以发
	h.HandleMessage(a, control(t, ControlMessage{Type: ControlChatMessage, Message: strings.Repeat("啊", 20)}))
	assert.Equal(t, EventChatMessage, recvEvent(t, b).Type)
	recvEvent(t, a)

	// 空消息
	h.HandleMessage(a, control(t, ControlMessage{Type: ControlChatMessage}))
	assertErrorEvent(t, a, apperrors.ErrInvalidParam)
}

func TestRoomHandler_Leave(t *testing.T) {
	h, hub, registry, _ := newTestHandler(t)
	roomID := createRoom(t, registry)

	a := joinClient(t, h, hub, roomID, "player-1")
	b := joinClient(t, h, hub, roomID, "player-2")
	recvEvent(t, a)

	h.HandleMessage(a, control(t, ControlMessage{Type: ControlLeaveRoom}))
	assert.Equal(t, StateLeft, a.State)

	left := recvEvent(t, b)
	assert.Equal(t, EventPlayerLeft, left.Type)
	assert.Equal(t, "player-1", left.Data.(map[string]interface{})["playerId"])

	r, err := registry.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.CurrentPlayers)

	// 离开是终态，之后的消息全部拒绝
	h.HandleMessage(a, control(t, ControlMessage{Type: ControlChatMessage, Message: "hi"}))
	assertErrorEvent(t, a, apperrors.ErrWebSocketClosed)
	h.HandleMessage(a, control(t, ControlMessage{Type: ControlJoinRoom, RoomID: roomID, PlayerID: "player-1"}))
	assertErrorEvent(t, a, apperrors.ErrWebSocketClosed)
}

func TestRoomHandler_Disconnect(t *testing.T) {
	h, hub, registry, _ := newTestHandler(t)
	roomID := createRoom(t, registry)

	a := joinClient(t, h, hub, roomID, "player-1")
	b := joinClient(t, h, hub, roomID, "player-2")
	recvEvent(t, a)

	h.HandleDisconnect(a)

	// 断线等同离开：广播、注册表摘除、连接注销
	assert.Equal(t, EventPlayerLeft, recvEvent(t, b).Type)
	r, err := registry.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.CurrentPlayers)
	assert.Equal(t, 1, hub.OnlineCount())
}

func TestRoomHandler_DisconnectUnjoined(t *testing.T) {
	h, hub, _, _ := newTestHandler(t)

	c := newTestClient(hub)
	h.HandleDisconnect(c)
	assert.Equal(t, 0, hub.OnlineCount())
}

func TestRoomHandler_NotifyGameStarted(t *testing.T) {
	h, hub, registry, _ := newTestHandler(t)
	roomID := createRoom(t, registry)

	a := joinClient(t, h, hub, roomID, "player-1")

	h.NotifyGameStarted(roomID, "game-1")
	evt := recvEvent(t, a)
	assert.Equal(t, EventGameStarted, evt.Type)
	data := evt.Data.(map[string]interface{})
	assert.Equal(t, roomID, data["roomId"])
	assert.Equal(t, "game-1", data["gameId"])
}
