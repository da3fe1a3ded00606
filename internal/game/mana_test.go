package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/card-battle/internal/errors"
	"github.com/wfunc/card-battle/internal/models"
)

func TestCanPay(t *testing.T) {
	tests := []struct {
		name string
		pool ManaPool
		cost ManaCost
		want bool
	}{
		{"恰好足够", ManaPool{"red": 1}, ManaCost{"red": 1}, true},
		{"颜色不足", ManaPool{"blue": 2}, ManaCost{"red": 1}, false},
		{"generic由任意颜色支付", ManaPool{"blue": 3}, ManaCost{"generic": 3}, true},
		{"颜色够但总量不够", ManaPool{"red": 1}, ManaCost{"red": 1, "generic": 1}, false},
		{"混合费用", ManaPool{"red": 2, "blue": 1}, ManaCost{"red": 1, "generic": 2}, true},
		{"空费用", ManaPool{}, ManaCost{}, true},
		{"空池非空费用", ManaPool{}, ManaCost{"generic": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPay(tt.pool, tt.cost))
		})
	}
}

func TestPay_InsufficientMana(t *testing.T) {
	_, _, err := Pay(ManaPool{"red": 1}, ManaCost{"red": 2})
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientMana))
}

func TestPay_ExactColors(t *testing.T) {
	remaining, used, err := Pay(ManaPool{"red": 2, "blue": 1}, ManaCost{"red": 1, "blue": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, remaining["red"])
	assert.Equal(t, 0, remaining["blue"])
	assert.Equal(t, 1, used["red"])
	assert.Equal(t, 1, used["blue"])
}

func TestPay_GenericDrainOrder(t *testing.T) {
	// generic 按 red→blue→green→white→black 顺序扣减
	remaining, used, err := Pay(
		ManaPool{"red": 1, "blue": 1, "green": 1, "white": 1, "black": 1},
		ManaCost{"generic": 3},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, used["red"])
	assert.Equal(t, 1, used["blue"])
	assert.Equal(t, 1, used["green"])
	assert.Equal(t, 0, used["white"])
	assert.Equal(t, 0, used["black"])
	assert.Equal(t, 1, remaining["white"])
	assert.Equal(t, 1, remaining["black"])
}

func TestPay_ScenarioRedGeneric(t *testing.T) {
	// 池 {red:2, blue:1}，费用 {red:1, generic:2}：
	// 具名red扣1，generic先吃剩余red再吃blue，最终池清空
	pool := ManaPool{"red": 2, "blue": 1}
	cost := ManaCost{"red": 1, "generic": 2}

	remaining, used, err := Pay(pool, cost)
	require.NoError(t, err)

	assert.Equal(t, 2, used["red"])
	assert.Equal(t, 1, used["blue"])
	assert.Equal(t, cost.Total(), used.Total())

	assert.Equal(t, 0, remaining["red"])
	assert.Equal(t, 0, remaining["blue"])

	// 原始池不被修改
	assert.Equal(t, 2, pool["red"])
	assert.Equal(t, 1, pool["blue"])
}

func TestPay_UsedEqualsPoolMinusRemaining(t *testing.T) {
	pool := ManaPool{"red": 3, "blue": 2, "green": 1}
	cost := ManaCost{"red": 1, "green": 1, "generic": 2}
	require.True(t, CanPay(pool, cost))

	remaining, used, err := Pay(pool, cost)
	require.NoError(t, err)

	assert.Equal(t, cost.Total(), used.Total())
	for _, color := range []string{"red", "blue", "green", "white", "black"} {
		assert.Equal(t, pool[color]-used[color], remaining[color], color)
		assert.GreaterOrEqual(t, remaining[color], 0, color)
	}
}

func TestPoolFromBattlefield(t *testing.T) {
	produced := map[string][]string{
		"c-mountain": {"red"},
		"c-plains":   {"white"},
	}
	cards := []*models.GameCard{
		{CatalogCardID: "c-mountain", Location: models.LocationBattlefield},
		{CatalogCardID: "c-mountain", Location: models.LocationBattlefield},
		{CatalogCardID: "c-mountain", Location: models.LocationBattlefield, IsTapped: true},
		{CatalogCardID: "c-plains", Location: models.LocationBattlefield},
		{CatalogCardID: "c-mountain", Location: models.LocationHand},
		{CatalogCardID: "c-goblin", Location: models.LocationBattlefield},
	}

	pool := PoolFromBattlefield(cards, produced)
	// 横置的、不在战场的、不产法力的都不计入
	assert.Equal(t, 2, pool["red"])
	assert.Equal(t, 1, pool["white"])
	assert.Equal(t, 3, pool.Total())
}

func TestTapSourcesForCost(t *testing.T) {
	produced := map[string][]string{
		"c-mountain": {"red"},
		"c-plains":   {"white"},
	}
	cards := []*models.GameCard{
		{CardID: "m1", CatalogCardID: "c-mountain", Location: models.LocationBattlefield},
		{CardID: "m2", CatalogCardID: "c-mountain", Location: models.LocationBattlefield},
		{CardID: "p1", CatalogCardID: "c-plains", Location: models.LocationBattlefield},
	}

	tapped := TapSourcesForCost(cards, ManaPool{"red": 1, "white": 1}, produced)
	require.Len(t, tapped, 2)
	assert.True(t, cards[0].IsTapped)
	assert.False(t, cards[1].IsTapped)
	assert.True(t, cards[2].IsTapped)
}

func TestTapSourcesForCost_GenericRemainder(t *testing.T) {
	produced := map[string][]string{
		"c-mountain": {"red"},
		"c-plains":   {"white"},
	}
	cards := []*models.GameCard{
		{CardID: "m1", CatalogCardID: "c-mountain", Location: models.LocationBattlefield},
		{CardID: "p1", CatalogCardID: "c-plains", Location: models.LocationBattlefield},
	}

	// blue 无法按颜色匹配，按发现顺序横置任意来源
	tapped := TapSourcesForCost(cards, ManaPool{"blue": 2}, produced)
	require.Len(t, tapped, 2)
	assert.True(t, cards[0].IsTapped)
	assert.True(t, cards[1].IsTapped)
}

func TestProducedColors(t *testing.T) {
	card := &models.CatalogCard{ProducedColors: "red, blue"}
	assert.Equal(t, []string{"red", "blue"}, ProducedColors(card))

	assert.Nil(t, ProducedColors(&models.CatalogCard{}))
	assert.Nil(t, ProducedColors(nil))
}
