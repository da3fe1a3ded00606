package game

import (
	"sort"

	"github.com/wfunc/card-battle/internal/models"
)

// 回合阶段（end_turn 时整体重置到初始值）
const (
	PhaseUntap = "untap"
	PhaseDraw  = "draw"
	PhaseMain  = "main"
	PhaseEnd   = "end"

	StepBegin = "begin"
	StepMain  = "main"
	StepEnd   = "end"
)

// InitialPhase 回合初始阶段
const InitialPhase = PhaseUntap

// InitialStep 回合初始步骤
const InitialStep = StepBegin

// State 对局的内存权威状态
// 数据库是它的持久化镜像；两者在每次行动后必须一致
type State struct {
	Session *models.GameSession
	Players []*models.GamePlayer
	Cards   []*models.GameCard
}

// ActivePlayer 当前行动玩家
func (s *State) ActivePlayer() *models.GamePlayer {
	idx := s.Session.CurrentPlayerIndex
	if idx < 0 || idx >= len(s.Players) {
		return nil
	}
	return s.Players[idx]
}

// PlayerByID 根据玩家ID查找
func (s *State) PlayerByID(playerID string) *models.GamePlayer {
	for _, p := range s.Players {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// CardByID 根据卡牌实例ID查找
func (s *State) CardByID(cardID string) *models.GameCard {
	for _, c := range s.Cards {
		if c.CardID == cardID {
			return c
		}
	}
	return nil
}

// CardsIn 某玩家指定区域的卡牌，按区域顺序
func (s *State) CardsIn(ownerID, location string) []*models.GameCard {
	var out []*models.GameCard
	for _, c := range s.Cards {
		if c.OwnerID == ownerID && c.Location == location {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ZoneIndex < out[j].ZoneIndex
	})
	return out
}

// CountIn 某玩家指定区域的卡牌数（区域真实基数）
func (s *State) CountIn(ownerID, location string) int {
	count := 0
	for _, c := range s.Cards {
		if c.OwnerID == ownerID && c.Location == location {
			count++
		}
	}
	return count
}

// SyncPlayerCounters 将玩家的手牌/牌库/墓地计数对齐到区域真实基数
func (s *State) SyncPlayerCounters(p *models.GamePlayer) {
	p.HandSize = s.CountIn(p.PlayerID, models.LocationHand)
	p.DeckSize = s.CountIn(p.PlayerID, models.LocationDeck)
	p.GraveyardSize = s.CountIn(p.PlayerID, models.LocationGraveyard)
}

// ResetPhase 阶段/步骤回到初始值（回合切换时整体重置）
func (s *State) ResetPhase() {
	s.Session.Phase = InitialPhase
	s.Session.Step = InitialStep
}

// Clone 深拷贝状态，用于持久化失败后的内存回滚
func (s *State) Clone() *State {
	session := *s.Session
	players := make([]*models.GamePlayer, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		players[i] = &cp
	}
	cards := make([]*models.GameCard, len(s.Cards))
	for i, c := range s.Cards {
		cp := *c
		if c.Counters != nil {
			cp.Counters = make(models.JSONMap, len(c.Counters))
			for k, v := range c.Counters {
				cp.Counters[k] = v
			}
		}
		cards[i] = &cp
	}
	return &State{
		Session: &session,
		Players: players,
		Cards:   cards,
	}
}

// Restore 用另一份状态覆盖当前状态（回滚）
func (s *State) Restore(from *State) {
	s.Session = from.Session
	s.Players = from.Players
	s.Cards = from.Cards
}

// Snapshot 生成可序列化的完整状态，用于快照表
func (s *State) Snapshot() models.JSONMap {
	players := make([]map[string]interface{}, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, map[string]interface{}{
			"player_id":      p.PlayerID,
			"player_index":   p.PlayerIndex,
			"life_total":     p.LifeTotal,
			"energy":         p.Energy,
			"max_energy":     p.MaxEnergy,
			"hand_size":      p.HandSize,
			"deck_size":      p.DeckSize,
			"graveyard_size": p.GraveyardSize,
			"is_active":      p.IsActive,
		})
	}

	cards := make([]map[string]interface{}, 0, len(s.Cards))
	for _, c := range s.Cards {
		cards = append(cards, map[string]interface{}{
			"card_id":         c.CardID,
			"catalog_card_id": c.CatalogCardID,
			"owner_id":        c.OwnerID,
			"location":        c.Location,
			"zone_index":      c.ZoneIndex,
			"is_tapped":       c.IsTapped,
			"damage":          c.Damage,
		})
	}

	return models.JSONMap{
		"game_id":              s.Session.GameID,
		"room_id":              s.Session.RoomID,
		"status":               s.Session.Status,
		"current_turn":         s.Session.CurrentTurn,
		"current_player_index": s.Session.CurrentPlayerIndex,
		"phase":                s.Session.Phase,
		"step":                 s.Session.Step,
		"players":              players,
		"cards":                cards,
	}
}
