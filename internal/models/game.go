package models

import (
	"time"
)

// 会话状态
const (
	SessionStatusActive    = "active"
	SessionStatusFinished  = "finished"
	SessionStatusCancelled = "cancelled"
	SessionStatusPaused    = "paused"
)

// 卡牌区域
const (
	LocationHand        = "hand"
	LocationDeck        = "deck"
	LocationGraveyard   = "graveyard"
	LocationBattlefield = "battlefield"
)

// GameSession 游戏会话表
// 每个房间进入 in_progress 时创建一条，结束后保留作为历史记录
type GameSession struct {
	BaseModel
	GameID             string     `gorm:"uniqueIndex;size:64;not null" json:"game_id"`
	RoomID             string     `gorm:"index;size:64;not null" json:"room_id"`
	Status             string     `gorm:"size:20;default:'active';index" json:"status"` // active, finished, cancelled, paused
	CurrentTurn        int        `gorm:"default:1" json:"current_turn"`
	CurrentPlayerIndex int        `gorm:"default:0" json:"current_player_index"`
	Phase              string     `gorm:"size:20" json:"phase"`
	Step               string     `gorm:"size:20" json:"step"`
	StartedAt          time.Time  `json:"started_at"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
	WinnerID           string     `gorm:"size:64" json:"winner_id,omitempty"`

	// 关联
	Players []GamePlayer `gorm:"foreignKey:GameID;references:GameID" json:"players,omitempty"`
}

// GamePlayer 对局玩家表
// PlayerIndex 按加入顺序分配，从0开始
type GamePlayer struct {
	BaseModel
	GameID        string `gorm:"uniqueIndex:idx_game_player;size:64;not null" json:"game_id"`
	PlayerID      string `gorm:"uniqueIndex:idx_game_player;size:64;not null" json:"player_id"`
	DeckID        string `gorm:"size:64" json:"deck_id"`
	PlayerIndex   int    `gorm:"not null" json:"player_index"`
	LifeTotal     int    `gorm:"default:20" json:"life_total"`
	Energy        int    `gorm:"default:1" json:"energy"`
	MaxEnergy     int    `gorm:"default:1" json:"max_energy"`
	HandSize      int    `gorm:"default:0" json:"hand_size"`
	DeckSize      int    `gorm:"default:0" json:"deck_size"`
	GraveyardSize int    `gorm:"default:0" json:"graveyard_size"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`
	HasMulliganed bool   `gorm:"default:false" json:"has_mulliganed"`
}

// GameCard 对局卡牌表
// 卡牌只在区域之间移动，从不物理删除（墓地是一个区域）
type GameCard struct {
	BaseModel
	GameID        string  `gorm:"index;size:64;not null" json:"game_id"`
	CardID        string  `gorm:"uniqueIndex;size:64;not null" json:"card_id"`
	CatalogCardID string  `gorm:"size:64;not null" json:"catalog_card_id"`
	OwnerID       string  `gorm:"index;size:64;not null" json:"owner_id"`
	ControllerID  string  `gorm:"size:64;not null" json:"controller_id"`
	Location      string  `gorm:"size:20;default:'deck';index" json:"location"` // hand, deck, graveyard, battlefield
	ZoneIndex     int     `gorm:"default:0" json:"zone_index"`
	Power         int     `gorm:"default:0" json:"power"`
	Toughness     int     `gorm:"default:0" json:"toughness"`
	Damage        int     `gorm:"default:0" json:"damage"`
	Counters      JSONMap `gorm:"type:json" json:"counters"`
	AttachedTo    string  `gorm:"size:64" json:"attached_to,omitempty"`
	IsTapped      bool    `gorm:"default:false" json:"is_tapped"`
}

// GameActionLog 操作日志表（只追加）
type GameActionLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GameID     string    `gorm:"index;size:64;not null" json:"game_id"`
	PlayerID   string    `gorm:"size:64;not null" json:"player_id"`
	ActionType string    `gorm:"size:50;not null" json:"action_type"`
	Payload    JSONMap   `gorm:"type:json" json:"payload"`
	TurnNumber int       `json:"turn_number"`
	Phase      string    `gorm:"size:20" json:"phase"`
	Step       string    `gorm:"size:20" json:"step"`
	CreatedAt  time.Time `json:"created_at"`
}

// GameStateSnapshot 状态快照表（只追加，用于审计和回放）
type GameStateSnapshot struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GameID     string    `gorm:"index;size:64;not null" json:"game_id"`
	TurnNumber int       `json:"turn_number"`
	Phase      string    `gorm:"size:20" json:"phase"`
	Step       string    `gorm:"size:20" json:"step"`
	FullState  JSONMap   `gorm:"type:json" json:"full_state"`
	CreatedAt  time.Time `json:"created_at"`
}
