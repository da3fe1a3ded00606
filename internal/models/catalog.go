package models

// 卡牌颜色
const (
	ColorRed   = "red"
	ColorBlue  = "blue"
	ColorGreen = "green"
	ColorWhite = "white"
	ColorBlack = "black"
)

// CatalogCard 卡牌目录表
// 目录的增删改由外部系统负责，本服务只读（开局实例化套牌时加载）
type CatalogCard struct {
	BaseModel
	CardID         string  `gorm:"uniqueIndex;size:64;not null" json:"card_id"`
	Name           string  `gorm:"size:100;not null" json:"name"`
	Type           string  `gorm:"size:50" json:"type"` // creature, spell, land
	EnergyCost     int     `gorm:"default:0" json:"energy_cost"`
	ManaCost       JSONMap `gorm:"type:json" json:"mana_cost"`
	ProducedColors string  `gorm:"size:100" json:"produced_colors"` // 逗号分隔的产出颜色
	Power          int     `gorm:"default:0" json:"power"`
	Toughness      int     `gorm:"default:0" json:"toughness"`
	AbilityData    JSONMap `gorm:"type:json" json:"ability_data"` // 仅声明，不在运行时解释
}

// DeckCard 套牌卡片表
// Position 决定实例化时的初始牌库顺序
type DeckCard struct {
	BaseModel
	DeckID        string `gorm:"index:idx_deck_position;size:64;not null" json:"deck_id"`
	CatalogCardID string `gorm:"size:64;not null" json:"catalog_card_id"`
	Position      int    `gorm:"index:idx_deck_position;not null" json:"position"`
}
