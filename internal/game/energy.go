package game

import (
	apperrors "github.com/wfunc/card-battle/internal/errors"
	"github.com/wfunc/card-battle/internal/models"
)

// DefaultEnergyCap 能量上限
const DefaultEnergyCap = 10

// EnergySystem 能量系统
// 线性无色资源：每回合上限+1（封顶），回合开始时全额回满
type EnergySystem struct {
	cap int
}

// NewEnergySystem 创建能量系统
func NewEnergySystem(cap int) *EnergySystem {
	if cap <= 0 {
		cap = DefaultEnergyCap
	}
	return &EnergySystem{cap: cap}
}

// Cap 能量上限
func (s *EnergySystem) Cap() int {
	return s.cap
}

// StartTurn 回合开始：上限+1（不超过封顶），能量回满
func (s *EnergySystem) StartTurn(p *models.GamePlayer) {
	p.MaxEnergy = p.MaxEnergy + 1
	if p.MaxEnergy > s.cap {
		p.MaxEnergy = s.cap
	}
	p.Energy = p.MaxEnergy
}

// CanPlay 能量是否足够支付费用
func (s *EnergySystem) CanPlay(p *models.GamePlayer, cost int) bool {
	return p.Energy >= cost
}

// Pay 支付能量，下限为0，不会变成负数
func (s *EnergySystem) Pay(p *models.GamePlayer, cost int) {
	p.Energy = p.Energy - cost
	if p.Energy < 0 {
		p.Energy = 0
	}
}

// Spend 校验并支付能量
func (s *EnergySystem) Spend(p *models.GamePlayer, cost int) error {
	if !s.CanPlay(p, cost) {
		return apperrors.Newf(apperrors.ErrInsufficientEnergy, "需要%d点能量，当前%d点", cost, p.Energy)
	}
	s.Pay(p, cost)
	return nil
}
