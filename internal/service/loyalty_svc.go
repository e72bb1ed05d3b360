package service

import (
	"context"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/repository"
	"depot_gas_v1_202608/internal/session"
)

// ==================== LoyaltyService ====================

// LoyaltyService 积分奖励操作
// 应用与取消只改会话状态；核销在结账事务内完成
type LoyaltyService struct {
	sessions    *SessionService
	loyaltyRepo repository.LoyaltyRepository
}

func NewLoyaltyService(sessions *SessionService, loyaltyRepo repository.LoyaltyRepository) *LoyaltyService {
	return &LoyaltyService{
		sessions:    sessions,
		loyaltyRepo: loyaltyRepo,
	}
}

// Programs 用户全部积分计划
func (s *LoyaltyService) Programs() ([]model.LoyaltyProgram, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}
	return state.Programs(), nil
}

// EligibleRewards 当前可应用的奖励：计划已达标且奖励商品在购物车中
func (s *LoyaltyService) EligibleRewards() ([]model.LoyaltyProgram, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}
	return state.EligiblePrograms(), nil
}

// Apply 向购物车应用奖励计划
// 校验计划已达标且奖励商品在车中；已应用其他计划返回 session.ErrAlreadyApplied；
// 重复应用同一计划为幂等
func (s *LoyaltyService) Apply(programID string) error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}

	eligible := false
	for _, p := range state.EligiblePrograms() {
		if p.ID == programID {
			eligible = true
			break
		}
	}
	if !eligible {
		return ErrRewardNotEligible
	}

	return state.ApplyProgram(programID)
}

// Remove 取消已应用的奖励，未应用时为空操作
func (s *LoyaltyService) Remove() error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}
	state.RemoveProgram()
	return nil
}

// ComputeTotals 当前购物车合计（折扣仅在奖励商品仍在车中时生效）
func (s *LoyaltyService) ComputeTotals() (session.Totals, error) {
	state, err := s.sessions.State()
	if err != nil {
		return session.Totals{}, err
	}
	return state.ComputeTotals(), nil
}

// Refresh 从持久层刷新积分计划
func (s *LoyaltyService) Refresh(ctx context.Context) error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}

	programs, err := s.loyaltyRepo.ListByOwner(ctx, state.UserID())
	if err != nil {
		return WrapStoreError("loyalty_refresh", "刷新积分计划失败", err)
	}
	state.SetPrograms(programs)
	return nil
}
