package game

import (
	"strings"

	apperrors "github.com/wfunc/card-battle/internal/errors"
	"github.com/wfunc/card-battle/internal/models"
)

// ManaGeneric 无色费用桶
const ManaGeneric = "generic"

// genericDrainOrder 无色费用的固定扣减顺序
var genericDrainOrder = []string{
	models.ColorRed,
	models.ColorBlue,
	models.ColorGreen,
	models.ColorWhite,
	models.ColorBlack,
}

// ManaPool 法力池，颜色→数量
// 每次行动时从未横置的战场来源重新推导，不跨行动保留
type ManaPool map[string]int

// ManaCost 法力费用，颜色→数量，另有 generic 桶可由任意颜色支付
type ManaCost map[string]int

// Total 法力池总量
func (p ManaPool) Total() int {
	total := 0
	for _, n := range p {
		total += n
	}
	return total
}

// Total 费用总量
func (c ManaCost) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Clone 复制法力池
func (p ManaPool) Clone() ManaPool {
	out := make(ManaPool, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// CanPay 法力池是否足以支付费用
// 双重校验：每个具名颜色必须由同色法力满足，同时总量必须覆盖总费用
// （generic 可以由任意颜色支付，所以单看颜色不够）
func CanPay(pool ManaPool, cost ManaCost) bool {
	for color, need := range cost {
		if color == ManaGeneric {
			continue
		}
		if pool[color] < need {
			return false
		}
	}
	return pool.Total() >= cost.Total()
}

// Pay 支付法力费用
// 先按颜色扣减具名部分，再按固定顺序 red→blue→green→white→black
// 扣减 generic 部分；返回实际消耗的各色数量，供调用方横置对应来源
func Pay(pool ManaPool, cost ManaCost) (remaining ManaPool, used ManaPool, err error) {
	if !CanPay(pool, cost) {
		return nil, nil, apperrors.New(apperrors.ErrInsufficientMana)
	}

	remaining = pool.Clone()
	used = make(ManaPool)

	// 具名颜色
	for color, need := range cost {
		if color == ManaGeneric || need == 0 {
			continue
		}
		remaining[color] -= need
		used[color] += need
	}

	// generic 按固定顺序扣减
	generic := cost[ManaGeneric]
	for _, color := range genericDrainOrder {
		if generic == 0 {
			break
		}
		available := remaining[color]
		if available == 0 {
			continue
		}
		take := available
		if take > generic {
			take = generic
		}
		remaining[color] -= take
		used[color] += take
		generic -= take
	}

	return remaining, used, nil
}

// ProducedColors 解析卡牌产出的颜色列表
func ProducedColors(card *models.CatalogCard) []string {
	if card == nil || card.ProducedColors == "" {
		return nil
	}
	parts := strings.Split(card.ProducedColors, ",")
	colors := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := strings.TrimSpace(p); c != "" {
			colors = append(colors, c)
		}
	}
	return colors
}

// PoolFromBattlefield 从未横置的战场来源推导法力池
// produced 给出每张图鉴卡牌的产出颜色（每个来源只计第一种颜色）
func PoolFromBattlefield(cards []*models.GameCard, produced map[string][]string) ManaPool {
	pool := make(ManaPool)
	for _, card := range cards {
		if card.Location != models.LocationBattlefield || card.IsTapped {
			continue
		}
		colors := produced[card.CatalogCardID]
		if len(colors) == 0 {
			continue
		}
		pool[colors[0]]++
	}
	return pool
}

// TapSourcesForCost 按实际消耗横置战场来源
// 每种颜色横置对应数量的同色未横置来源；不足的部分按发现顺序
// 横置任意颜色的剩余来源。返回被横置的卡牌
func TapSourcesForCost(cards []*models.GameCard, used ManaPool, produced map[string][]string) []*models.GameCard {
	tapped := make([]*models.GameCard, 0, used.Total())
	remaining := used.Clone()

	producesColor := func(card *models.GameCard, color string) bool {
		for _, c := range produced[card.CatalogCardID] {
			if c == color {
				return true
			}
		}
		return false
	}

	// 先按颜色匹配
	for _, card := range cards {
		if card.Location != models.LocationBattlefield || card.IsTapped {
			continue
		}
		for color, need := range remaining {
			if need > 0 && producesColor(card, color) {
				card.IsTapped = true
				tapped = append(tapped, card)
				remaining[color]--
				break
			}
		}
	}

	// 剩余部分按发现顺序横置任意来源
	leftover := remaining.Total()
	if leftover > 0 {
		for _, card := range cards {
			if leftover == 0 {
				break
			}
			if card.Location != models.LocationBattlefield || card.IsTapped {
				continue
			}
			if len(produced[card.CatalogCardID]) == 0 {
				continue
			}
			card.IsTapped = true
			tapped = append(tapped, card)
			leftover--
		}
	}

	return tapped
}
