package models

import (
	"time"
)

// 房间状态
const (
	RoomStatusWaiting    = "waiting"     // 等待玩家准备
	RoomStatusInProgress = "in_progress" // 对局进行中
	RoomStatusFinished   = "finished"    // 已结束
	RoomStatusCancelled  = "cancelled"   // 已取消
)

// 准备状态
const (
	ReadyStatusReady    = "ready"
	ReadyStatusNotReady = "not_ready"
)

// Room 游戏房间表
// 不变量: CurrentPlayers == len(Members) 且 CurrentPlayers <= MaxPlayers
type Room struct {
	BaseModel
	RoomID         string  `gorm:"uniqueIndex;size:64;not null" json:"room_id"`
	Name           string  `gorm:"size:100;not null" json:"name"`
	Status         string  `gorm:"size:20;default:'waiting';index" json:"status"` // waiting, in_progress, finished, cancelled
	MaxPlayers     int     `gorm:"default:2" json:"max_players"`
	CurrentPlayers int     `gorm:"default:0" json:"current_players"`
	CreatedBy      string  `gorm:"size:64;not null" json:"created_by"`

	// 关联
	Members []RoomMember `gorm:"foreignKey:RoomID;references:RoomID" json:"members,omitempty"`
}

// RoomMember 房间成员表
// 唯一约束: (room_id, player_id)
type RoomMember struct {
	BaseModel
	RoomID   string    `gorm:"uniqueIndex:idx_room_player;size:64;not null" json:"room_id"`
	PlayerID string    `gorm:"uniqueIndex:idx_room_player;size:64;not null" json:"player_id"`
	DeckID   string    `gorm:"size:64" json:"deck_id,omitempty"`
	IsReady  string    `gorm:"size:20;default:'not_ready'" json:"is_ready"` // ready, not_ready
	JoinedAt time.Time `json:"joined_at"`
}
