package websocket

import (
	"context"
	"sync"

	apperrors "github.com/wfunc/card-battle/internal/errors"
	"github.com/wfunc/card-battle/internal/event"
	"github.com/wfunc/card-battle/internal/logger"
	"github.com/wfunc/card-battle/internal/repository"
	"go.uber.org/zap"
)

// EventBridge 对局事件转发器
// 订阅事件总线，把对局事件按 gameID→roomID 映射广播到对应房间
type EventBridge struct {
	hub      *Hub
	sessions repository.GameSessionRepository

	mu    sync.RWMutex
	cache map[string]string // gameID → roomID

	unsubscribe func()
	log         *zap.Logger
}

// NewEventBridge 创建事件转发器
func NewEventBridge(hub *Hub, sessions repository.GameSessionRepository) *EventBridge {
	return &EventBridge{
		hub:      hub,
		sessions: sessions,
		cache:    make(map[string]string),
		log:      logger.GetModuleLogger("websocket"),
	}
}

// Start 订阅事件总线
func (b *EventBridge) Start(bus *event.Bus) {
	b.unsubscribe = bus.SubscribeAll(b.relay)
}

// Stop 取消订阅
func (b *EventBridge) Stop() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

// relay 把一条总线事件转发到所属房间
// 解析不出房间的事件丢弃并记录
func (b *EventBridge) relay(evt event.Event) error {
	roomID, err := b.resolveRoom(evt.GameID)
	if err != nil {
		b.log.Warn("事件无法定位房间，丢弃",
			zap.String("type", string(evt.Type)),
			zap.String("game_id", evt.GameID),
			zap.Error(err))
		return err
	}

	b.hub.BroadcastToRoom(roomID, NewServerEvent(EventGameEvent, evt))

	// 对局结束后映射不再有效
	if evt.Type == event.GameEnded {
		b.mu.Lock()
		delete(b.cache, evt.GameID)
		b.mu.Unlock()
	}
	return nil
}

// resolveRoom 查询 gameID 对应的房间，命中缓存则免查库
func (b *EventBridge) resolveRoom(gameID string) (string, error) {
	if gameID == "" {
		return "", apperrors.New(apperrors.ErrInvalidParam, "事件缺少gameId")
	}

	b.mu.RLock()
	roomID, ok := b.cache[gameID]
	b.mu.RUnlock()
	if ok {
		return roomID, nil
	}

	session, err := b.sessions.FindByGameID(context.Background(), gameID)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrSessionNotFound)
	}

	b.mu.Lock()
	b.cache[gameID] = session.RoomID
	b.mu.Unlock()
	return session.RoomID, nil
}
