package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient 构造不带真实连接的测试客户端
func newTestClient(hub *Hub) *Client {
	c := &Client{
		ID:    uuid.NewString(),
		State: StateUnjoined,
		Hub:   hub,
		Send:  make(chan []byte, 16),
	}
	hub.Register(c)
	return c
}

// recvEvent 从发送通道取一条事件，通道为空时测试失败
func recvEvent(t *testing.T, c *Client) *ServerEvent {
	t.Helper()
	select {
	case data := <-c.Send:
		var evt ServerEvent
		require.NoError(t, json.Unmarshal(data, &evt))
		return &evt
	default:
		t.Fatal("发送通道为空")
		return nil
	}
}

// assertNoEvent 断言发送通道为空
func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("不应收到消息: %s", data)
	default:
	}
}

func TestHub_JoinRoomAndBroadcast(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub)
	b := newTestClient(hub)

	hub.JoinRoom(a, "r1", "player-1")
	hub.JoinRoom(b, "r1", "player-2")
	assert.Equal(t, 2, hub.RoomSize("r1"))
	assert.Equal(t, 2, hub.OnlineCount())

	hub.BroadcastToRoom("r1", NewServerEvent(EventChatMessage, map[string]interface{}{"message": "hi"}))
	assert.Equal(t, EventChatMessage, recvEvent(t, a).Type)
	assert.Equal(t, EventChatMessage, recvEvent(t, b).Type)
}

func TestHub_BroadcastExclude(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub)
	b := newTestClient(hub)

	hub.JoinRoom(a, "r1", "player-1")
	hub.JoinRoom(b, "r1", "player-2")

	hub.BroadcastToRoom("r1", NewServerEvent(EventPlayerJoined, nil), a.ID)
	assertNoEvent(t, a)
	assert.Equal(t, EventPlayerJoined, recvEvent(t, b).Type)
}

func TestHub_BroadcastOtherRoomUnaffected(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub)
	b := newTestClient(hub)

	hub.JoinRoom(a, "r1", "player-1")
	hub.JoinRoom(b, "r2", "player-2")

	hub.BroadcastToRoom("r1", NewServerEvent(EventChatMessage, nil))
	assert.Equal(t, EventChatMessage, recvEvent(t, a).Type)
	assertNoEvent(t, b)
}

func TestHub_LeaveRoom(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub)

	hub.JoinRoom(a, "r1", "player-1")
	require.Equal(t, 1, hub.RoomSize("r1"))

	hub.LeaveRoom(a)
	assert.Equal(t, 0, hub.RoomSize("r1"))
	assert.Empty(t, a.RoomID)
	assert.Empty(t, a.PlayerID)

	// 离开房间后不再收到广播，但连接仍在线
	hub.BroadcastToRoom("r1", NewServerEvent(EventChatMessage, nil))
	assertNoEvent(t, a)
	assert.Equal(t, 1, hub.OnlineCount())
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub)
	hub.JoinRoom(a, "r1", "player-1")

	hub.Unregister(a)
	assert.Equal(t, 0, hub.OnlineCount())
	assert.Equal(t, 0, hub.RoomSize("r1"))

	// 发送通道已关闭
	_, ok := <-a.Send
	assert.False(t, ok)

	// 重复注销是安全的
	hub.Unregister(a)
}

func TestHub_SendBufferFull(t *testing.T) {
	hub := NewHub()
	c := &Client{ID: "c1", Send: make(chan []byte, 1)}
	hub.Register(c)

	require.NoError(t, hub.SendToClient(c, NewServerEvent(EventConnected, nil)))
	err := hub.SendToClient(c, NewServerEvent(EventConnected, nil))
	assert.ErrorIs(t, err, ErrSendBufferFull)
}
