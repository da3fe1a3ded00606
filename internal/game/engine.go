package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/card-battle/internal/config"
	apperrors "github.com/wfunc/card-battle/internal/errors"
	"github.com/wfunc/card-battle/internal/event"
	"github.com/wfunc/card-battle/internal/logger"
	"github.com/wfunc/card-battle/internal/models"
	"github.com/wfunc/card-battle/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 行动类型
const (
	ActionEndTurn  = "end_turn"
	ActionPlayCard = "play_card"
	ActionDrawCard = "draw_card"
)

// Action 玩家行动请求
type Action struct {
	Type     string                 `json:"type"`
	PlayerID string                 `json:"player_id"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// sessionEntry 对局条目
// 每个条目自带互斥锁：同一对局的行动串行执行，不同对局并行
type sessionEntry struct {
	mu    sync.Mutex
	state *State
}

// Engine 对局引擎
// 持有全部活跃对局的内存权威状态，校验并执行行动，
// 通过事务管理器持久化，通过事件总线广播变更
type Engine struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	repos  *repository.Manager
	bus    *event.Bus
	cfg    *config.GameConfig
	energy *EnergySystem
	log    *zap.Logger
}

// NewEngine 创建对局引擎
func NewEngine(repos *repository.Manager, bus *event.Bus, cfg *config.GameConfig) *Engine {
	return &Engine{
		sessions: make(map[string]*sessionEntry),
		repos:    repos,
		bus:      bus,
		cfg:      cfg,
		energy:   NewEnergySystem(cfg.MaxEnergy),
		log:      logger.GetModuleLogger("game"),
	}
}

// Energy 能量系统
func (e *Engine) Energy() *EnergySystem {
	return e.energy
}

// CreateSession 从就绪房间创建对局
// 会话、玩家、整副牌库实例化、7张起手、房间翻转、初始快照在一个事务中完成
func (e *Engine) CreateSession(ctx context.Context, roomID string) (*State, error) {
	room, err := e.repos.Room().FindByRoomID(ctx, roomID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.ErrRoomNotFound)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	// 纵深防御：注册表已校验过，这里再校验一次
	if room.Status != models.RoomStatusWaiting {
		return nil, apperrors.New(apperrors.ErrRoomNotWaiting)
	}
	if len(room.Members) < e.cfg.MinPlayers {
		return nil, apperrors.Newf(apperrors.ErrInsufficientPlayers, "当前%d人，至少需要%d人", len(room.Members), e.cfg.MinPlayers)
	}
	for _, m := range room.Members {
		if m.IsReady != models.ReadyStatusReady {
			return nil, apperrors.Newf(apperrors.ErrPlayersNotReady, "玩家 %s 未准备", m.PlayerID)
		}
	}

	gameID := uuid.NewString()
	now := time.Now()

	session := &models.GameSession{
		GameID:             gameID,
		RoomID:             roomID,
		Status:             models.SessionStatusActive,
		CurrentTurn:        1,
		CurrentPlayerIndex: 0,
		Phase:              InitialPhase,
		Step:               InitialStep,
		StartedAt:          now,
	}

	players := make([]*models.GamePlayer, 0, len(room.Members))
	cards := make([]*models.GameCard, 0, len(room.Members)*40)

	for i, member := range room.Members {
		deckID := member.DeckID
		if deckID == "" {
			deckID = e.cfg.DefaultDeckID
		}

		deckCards, err := e.instantiateDeck(ctx, gameID, member.PlayerID, deckID)
		if err != nil {
			return nil, err
		}
		cards = append(cards, deckCards...)

		player := &models.GamePlayer{
			GameID:      gameID,
			PlayerID:    member.PlayerID,
			DeckID:      deckID,
			PlayerIndex: i,
			LifeTotal:   e.cfg.StartingLife,
			Energy:      1,
			MaxEnergy:   1,
			IsActive:    i == 0,
		}
		players = append(players, player)
	}

	state := &State{Session: session, Players: players, Cards: cards}
	for _, p := range players {
		state.SyncPlayerCounters(p)
	}

	err = e.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if err := tx.GameSession().Create(ctx, session); err != nil {
			return err
		}
		if err := tx.GamePlayer().CreateBatch(ctx, players); err != nil {
			return err
		}
		if err := tx.GameCard().CreateBatch(ctx, cards); err != nil {
			return err
		}
		if err := tx.Room().UpdateByRoomID(ctx, roomID, map[string]interface{}{
			"status": models.RoomStatusInProgress,
		}); err != nil {
			return err
		}
		return tx.Snapshot().Create(ctx, &models.GameStateSnapshot{
			GameID:     gameID,
			TurnNumber: 1,
			Phase:      session.Phase,
			Step:       session.Step,
			FullState:  state.Snapshot(),
		})
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTransaction, "创建对局失败")
	}

	e.mu.Lock()
	e.sessions[gameID] = &sessionEntry{state: state}
	e.mu.Unlock()

	e.log.Info("对局创建",
		zap.String("game_id", gameID),
		zap.String("room_id", roomID),
		zap.Int("players", len(players)),
		zap.Int("cards", len(cards)))

	e.bus.Publish(event.Event{
		Type:   event.GameStarted,
		GameID: gameID,
		Data: map[string]interface{}{
			"room_id":      roomID,
			"player_count": len(players),
		},
	})

	return state, nil
}

// instantiateDeck 将牌组清单实例化为对局卡牌
// 前 OpeningHandSize 张按牌库顺序进入手牌，其余按顺序进入牌库
func (e *Engine) instantiateDeck(ctx context.Context, gameID, playerID, deckID string) ([]*models.GameCard, error) {
	deckList, err := e.repos.DeckCard().FindByDeckID(ctx, deckID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	if len(deckList) == 0 {
		return nil, apperrors.Newf(apperrors.ErrNotFound, "牌组 %s 不存在或为空", deckID)
	}

	catalogIDs := make([]string, 0, len(deckList))
	for _, dc := range deckList {
		catalogIDs = append(catalogIDs, dc.CatalogCardID)
	}
	catalogCards, err := e.repos.CatalogCard().FindByCardIDs(ctx, catalogIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	catalog := make(map[string]*models.CatalogCard, len(catalogCards))
	for _, cc := range catalogCards {
		catalog[cc.CardID] = cc
	}

	handSize := e.cfg.OpeningHandSize
	cards := make([]*models.GameCard, 0, len(deckList))
	deckIndex := 0
	for i, dc := range deckList {
		card := &models.GameCard{
			GameID:        gameID,
			CardID:        uuid.NewString(),
			CatalogCardID: dc.CatalogCardID,
			OwnerID:       playerID,
			ControllerID:  playerID,
		}
		if cc, ok := catalog[dc.CatalogCardID]; ok {
			card.Power = cc.Power
			card.Toughness = cc.Toughness
		}
		if i < handSize {
			card.Location = models.LocationHand
			card.ZoneIndex = i
		} else {
			card.Location = models.LocationDeck
			card.ZoneIndex = deckIndex
			deckIndex++
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ProcessAction 处理玩家行动
// 同一对局的行动被条目锁串行化；持久化失败时内存状态回滚
func (e *Engine) ProcessAction(ctx context.Context, gameID string, action Action) (*State, error) {
	entry, err := e.entry(gameID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	st := entry.state
	active := st.ActivePlayer()
	if active == nil || action.PlayerID != active.PlayerID {
		return nil, apperrors.New(apperrors.ErrNotYourTurn)
	}

	backup := st.Clone()

	var changedCards []*models.GameCard
	var events []event.Event

	switch action.Type {
	case ActionEndTurn:
		events = e.applyEndTurn(st)
	case ActionPlayCard:
		changedCards, events, err = e.applyPlayCard(st, active, action)
	case ActionDrawCard:
		changedCards, events, err = e.applyDrawCard(st, active, action)
	default:
		err = apperrors.Newf(apperrors.ErrUnsupportedAction, "不支持的行动类型: %s", action.Type)
	}
	if err != nil {
		st.Restore(backup)
		return nil, err
	}

	if err := e.persistAction(ctx, st, active, action, changedCards); err != nil {
		st.Restore(backup)
		return nil, apperrors.Wrap(err, apperrors.ErrTransaction, "行动持久化失败")
	}

	for _, evt := range events {
		e.bus.Publish(evt)
	}
	e.bus.Publish(event.Event{
		Type:     event.GameStateUpdated,
		GameID:   gameID,
		PlayerID: action.PlayerID,
		Data: map[string]interface{}{
			"action":               action.Type,
			"current_turn":         st.Session.CurrentTurn,
			"current_player_index": st.Session.CurrentPlayerIndex,
		},
	})

	return st, nil
}

// applyEndTurn 回合结束：座次轮转，绕回0时回合数+1，阶段整体重置
// 能量刷新不在这里隐式发生，由调用方在新回合显式调用 StartTurn
func (e *Engine) applyEndTurn(st *State) []event.Event {
	prev := st.Session.CurrentPlayerIndex
	n := len(st.Players)
	st.Session.CurrentPlayerIndex = (prev + 1) % n
	if st.Session.CurrentPlayerIndex == 0 {
		st.Session.CurrentTurn++
	}
	st.ResetPhase()

	st.Players[prev].IsActive = false
	st.Players[st.Session.CurrentPlayerIndex].IsActive = true

	return []event.Event{{
		Type:     event.TurnEnded,
		GameID:   st.Session.GameID,
		PlayerID: st.Players[prev].PlayerID,
		Data: map[string]interface{}{
			"turn":        st.Session.CurrentTurn,
			"next_player": st.Players[st.Session.CurrentPlayerIndex].PlayerID,
		},
	}}
}

// applyPlayCard 打出手牌：手牌→战场
func (e *Engine) applyPlayCard(st *State, active *models.GamePlayer, action Action) ([]*models.GameCard, []event.Event, error) {
	cardID, _ := action.Data["card_id"].(string)
	card := st.CardByID(cardID)
	if card == nil || card.OwnerID != active.PlayerID || card.Location != models.LocationHand {
		return nil, nil, apperrors.Newf(apperrors.ErrCardNotInHand, "卡牌 %s 不在手牌中", cardID)
	}

	maxZone := -1
	for _, c := range st.CardsIn(active.PlayerID, models.LocationBattlefield) {
		if c.ZoneIndex > maxZone {
			maxZone = c.ZoneIndex
		}
	}
	card.Location = models.LocationBattlefield
	card.ZoneIndex = maxZone + 1

	changed := []*models.GameCard{card}

	// 出牌后重排手牌序号
	for i, c := range st.CardsIn(active.PlayerID, models.LocationHand) {
		if c.ZoneIndex != i {
			c.ZoneIndex = i
			changed = append(changed, c)
		}
	}
	st.SyncPlayerCounters(active)

	return changed, []event.Event{{
		Type:     event.CardPlayed,
		GameID:   st.Session.GameID,
		PlayerID: active.PlayerID,
		Data: map[string]interface{}{
			"card_id":         card.CardID,
			"catalog_card_id": card.CatalogCardID,
		},
	}}, nil
}

// applyDrawCard 抽牌：牌库顶（zone_index 最小）的N张按顺序进入手牌
// 手牌/牌库计数对齐到区域真实基数，不做相对增减
func (e *Engine) applyDrawCard(st *State, active *models.GamePlayer, action Action) ([]*models.GameCard, []event.Event, error) {
	count := 1
	if raw, ok := action.Data["count"]; ok {
		switch v := raw.(type) {
		case float64:
			count = int(v)
		case int:
			count = v
		}
	}
	if count < 1 {
		count = 1
	}

	deck := st.CardsIn(active.PlayerID, models.LocationDeck)
	if count > len(deck) {
		count = len(deck)
	}

	handSize := st.CountIn(active.PlayerID, models.LocationHand)
	changed := make([]*models.GameCard, 0, count)
	drawnIDs := make([]string, 0, count)
	for i := 0; i < count; i++ {
		card := deck[i]
		card.Location = models.LocationHand
		card.ZoneIndex = handSize + i
		changed = append(changed, card)
		drawnIDs = append(drawnIDs, card.CardID)
	}

	// 剩余牌库重排序号
	for i, c := range st.CardsIn(active.PlayerID, models.LocationDeck) {
		if c.ZoneIndex != i {
			c.ZoneIndex = i
			changed = append(changed, c)
		}
	}
	st.SyncPlayerCounters(active)

	return changed, []event.Event{{
		Type:     event.CardDrawn,
		GameID:   st.Session.GameID,
		PlayerID: active.PlayerID,
		Data: map[string]interface{}{
			"count":     count,
			"card_ids":  drawnIDs,
			"hand_size": active.HandSize,
			"deck_size": active.DeckSize,
		},
	}}, nil
}

// persistAction 行动产生的全部写入作为一个事务提交
// 行动日志、状态字段、快照要么全部落库要么全部不落
func (e *Engine) persistAction(ctx context.Context, st *State, active *models.GamePlayer, action Action, changedCards []*models.GameCard) error {
	return e.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if err := tx.GameSession().UpdateByGameID(ctx, st.Session.GameID, map[string]interface{}{
			"current_turn":         st.Session.CurrentTurn,
			"current_player_index": st.Session.CurrentPlayerIndex,
			"phase":                st.Session.Phase,
			"step":                 st.Session.Step,
		}); err != nil {
			return err
		}

		for _, p := range st.Players {
			if err := tx.GamePlayer().UpdateByGamePlayer(ctx, p.GameID, p.PlayerID, map[string]interface{}{
				"life_total":     p.LifeTotal,
				"energy":         p.Energy,
				"max_energy":     p.MaxEnergy,
				"hand_size":      p.HandSize,
				"deck_size":      p.DeckSize,
				"graveyard_size": p.GraveyardSize,
				"is_active":      p.IsActive,
			}); err != nil {
				return err
			}
		}

		for _, c := range changedCards {
			if err := tx.GameCard().UpdateByCardID(ctx, c.GameID, c.CardID, map[string]interface{}{
				"location":   c.Location,
				"zone_index": c.ZoneIndex,
				"is_tapped":  c.IsTapped,
				"damage":     c.Damage,
			}); err != nil {
				return err
			}
		}

		if err := tx.ActionLog().Create(ctx, &models.GameActionLog{
			GameID:     st.Session.GameID,
			PlayerID:   action.PlayerID,
			ActionType: action.Type,
			Payload:    models.JSONMap(action.Data),
			TurnNumber: st.Session.CurrentTurn,
			Phase:      st.Session.Phase,
			Step:       st.Session.Step,
		}); err != nil {
			return err
		}

		return tx.Snapshot().Create(ctx, &models.GameStateSnapshot{
			GameID:     st.Session.GameID,
			TurnNumber: st.Session.CurrentTurn,
			Phase:      st.Session.Phase,
			Step:       st.Session.Step,
			FullState:  st.Snapshot(),
		})
	})
}

// StartTurn 新回合开始：当前行动玩家能量刷新，战场解除横置
// 这是调用方的显式责任，end_turn 不会隐式触发
func (e *Engine) StartTurn(ctx context.Context, gameID string) (*State, error) {
	entry, err := e.entry(gameID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	st := entry.state
	active := st.ActivePlayer()
	if active == nil {
		return nil, apperrors.New(apperrors.ErrSessionNotFound)
	}

	backup := st.Clone()

	e.energy.StartTurn(active)

	var changed []*models.GameCard
	for _, c := range st.CardsIn(active.PlayerID, models.LocationBattlefield) {
		if c.IsTapped {
			c.IsTapped = false
			changed = append(changed, c)
		}
	}

	err = e.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if err := tx.GamePlayer().UpdateByGamePlayer(ctx, gameID, active.PlayerID, map[string]interface{}{
			"energy":     active.Energy,
			"max_energy": active.MaxEnergy,
		}); err != nil {
			return err
		}
		for _, c := range changed {
			if err := tx.GameCard().UpdateByCardID(ctx, gameID, c.CardID, map[string]interface{}{
				"is_tapped": false,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		st.Restore(backup)
		return nil, apperrors.Wrap(err, apperrors.ErrTransaction, "回合开始持久化失败")
	}

	e.bus.Publish(event.Event{
		Type:     event.TurnStarted,
		GameID:   gameID,
		PlayerID: active.PlayerID,
		Data: map[string]interface{}{
			"turn": st.Session.CurrentTurn,
		},
	})
	e.bus.Publish(event.Event{
		Type:     event.EnergyChanged,
		GameID:   gameID,
		PlayerID: active.PlayerID,
		Data: map[string]interface{}{
			"energy":     active.Energy,
			"max_energy": active.MaxEnergy,
		},
	})

	return st, nil
}

// EndSession 结束对局：会话归档，房间回到等待状态，内存条目清除
func (e *Engine) EndSession(ctx context.Context, gameID, winnerID string) error {
	entry, err := e.entry(gameID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	st := entry.state
	roomID := st.Session.RoomID

	err = e.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if err := tx.GameSession().EndSession(ctx, gameID, models.SessionStatusFinished, winnerID); err != nil {
			return err
		}
		return tx.Room().UpdateByRoomID(ctx, roomID, map[string]interface{}{
			"status": models.RoomStatusWaiting,
		})
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrTransaction, "结束对局失败")
	}

	e.mu.Lock()
	delete(e.sessions, gameID)
	e.mu.Unlock()

	e.log.Info("对局结束",
		zap.String("game_id", gameID),
		zap.String("winner_id", winnerID))

	e.bus.Publish(event.Event{
		Type:   event.GameEnded,
		GameID: gameID,
		Data: map[string]interface{}{
			"room_id":   roomID,
			"winner_id": winnerID,
		},
	})

	return nil
}

// GetState 读取对局状态（返回拷贝，避免调用方与引擎竞争）
func (e *Engine) GetState(gameID string) (*State, error) {
	entry, err := e.entry(gameID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state.Clone(), nil
}

// ListActive 列出全部活跃对局的ID
func (e *Engine) ListActive() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Recover 服务重启后从数据库恢复活跃对局到内存
func (e *Engine) Recover(ctx context.Context) error {
	sessions, err := e.repos.GameSession().ListActive(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	for _, session := range sessions {
		players, err := e.repos.GamePlayer().FindByGame(ctx, session.GameID)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
		}
		cards, err := e.repos.GameCard().FindByGame(ctx, session.GameID)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
		}

		e.mu.Lock()
		e.sessions[session.GameID] = &sessionEntry{state: &State{
			Session: session,
			Players: players,
			Cards:   cards,
		}}
		e.mu.Unlock()

		e.log.Info("恢复活跃对局",
			zap.String("game_id", session.GameID),
			zap.String("room_id", session.RoomID))
	}

	return nil
}

// entry 查找对局条目
func (e *Engine) entry(gameID string) (*sessionEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	entry, ok := e.sessions[gameID]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrSessionNotFound, "对局 %s 不存在", gameID)
	}
	return entry, nil
}
