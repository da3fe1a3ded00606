package event

import (
	"fmt"
	"sync"
	"time"

	"github.com/wfunc/card-battle/internal/logger"
	"go.uber.org/zap"
)

// Type 事件类型
type Type string

// 对局事件类型（封闭集合，不接受未定义的类型）
const (
	GameStarted         Type = "game_started"
	GameEnded           Type = "game_ended"
	TurnStarted         Type = "turn_started"
	TurnEnded           Type = "turn_ended"
	CardPlayed          Type = "card_played"
	CardDrawn           Type = "card_drawn"
	AttackDeclared      Type = "attack_declared"
	DamageDealt         Type = "damage_dealt"
	PlayerHealthChanged Type = "player_health_changed"
	EnergyChanged       Type = "energy_changed"
	PhaseChanged        Type = "phase_changed"
	GameStateUpdated    Type = "game_state_updated"
)

// validTypes 合法事件类型集合
var validTypes = map[Type]struct{}{
	GameStarted:         {},
	GameEnded:           {},
	TurnStarted:         {},
	TurnEnded:           {},
	CardPlayed:          {},
	CardDrawn:           {},
	AttackDeclared:      {},
	DamageDealt:         {},
	PlayerHealthChanged: {},
	EnergyChanged:       {},
	PhaseChanged:        {},
	GameStateUpdated:    {},
}

// IsValidType 检查事件类型是否在封闭集合内
func IsValidType(t Type) bool {
	_, ok := validTypes[t]
	return ok
}

// Event 对局事件
type Event struct {
	Type      Type                   `json:"type"`
	GameID    string                 `json:"game_id"`
	PlayerID  string                 `json:"player_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Handler 事件处理函数
// 返回的错误只记录，不向发布方传播
type Handler func(evt Event) error

// Bus 进程内事件总线
// 发布是同步的，单个处理器的 panic 被捕获并记录，不影响其他处理器
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type]map[uint64]Handler
	all      map[uint64]Handler
	nextID   uint64
	log      *zap.Logger
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Type]map[uint64]Handler),
		all:      make(map[uint64]Handler),
		log:      logger.GetModuleLogger("event"),
	}
}

// Subscribe 订阅指定类型的事件，返回取消订阅函数
func (b *Bus) Subscribe(t Type, h Handler) (func(), error) {
	if !IsValidType(t) {
		return nil, fmt.Errorf("未知事件类型: %s", t)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.handlers[t] == nil {
		b.handlers[t] = make(map[uint64]Handler)
	}
	b.handlers[t][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[t], id)
	}, nil
}

// SubscribeAll 订阅全部事件，返回取消订阅函数
func (b *Bus) SubscribeAll(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.all[id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.all, id)
	}
}

// Publish 发布事件
// 处理器的调用顺序不作保证；某个处理器失败不中断其余处理器
func (b *Bus) Publish(evt Event) error {
	if !IsValidType(evt.Type) {
		return fmt.Errorf("未知事件类型: %s", evt.Type)
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	b.mu.RLock()
	targets := make([]Handler, 0, len(b.handlers[evt.Type])+len(b.all))
	for _, h := range b.handlers[evt.Type] {
		targets = append(targets, h)
	}
	for _, h := range b.all {
		targets = append(targets, h)
	}
	b.mu.RUnlock()

	for _, h := range targets {
		b.dispatch(evt, h)
	}
	return nil
}

// dispatch 调用单个处理器，捕获 panic 和错误
func (b *Bus) dispatch(evt Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("事件处理器panic",
				zap.String("type", string(evt.Type)),
				zap.String("game_id", evt.GameID),
				zap.Any("panic", r))
		}
	}()
	if err := h(evt); err != nil {
		b.log.Error("事件处理器失败",
			zap.String("type", string(evt.Type)),
			zap.String("game_id", evt.GameID),
			zap.Error(err))
	}
}

// SubscriberCount 统计指定类型的订阅者数量（含全量订阅者）
func (b *Bus) SubscriberCount(t Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[t]) + len(b.all)
}
