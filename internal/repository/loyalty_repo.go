package repository

import (
	"context"
	"errors"
	"time"

	"depot_gas_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== LoyaltyRepository 忠诚度计划仓库 ====================

// ErrProgramNotRedeemable 计划不处于可兑换状态
var ErrProgramNotRedeemable = errors.New("忠诚度计划不可兑换")

// LoyaltyRepository 忠诚度计划仓库接口
type LoyaltyRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.LoyaltyProgram, error)
	GetByID(ctx context.Context, id string) (*model.LoyaltyProgram, error)
	Create(ctx context.Context, program *model.LoyaltyProgram) error

	// Redeem 兑换：将 completed 计划标记为 redeemed，并在同一事务内
	// 插入一个同条款、计数清零的新 active 计划延续周期，返回新计划
	Redeem(ctx context.Context, programID, orderID string) (*model.LoyaltyProgram, error)
}

type loyaltyRepository struct {
	db *gorm.DB
}

// NewLoyaltyRepository 创建忠诚度计划仓库
func NewLoyaltyRepository(db *gorm.DB) LoyaltyRepository {
	return &loyaltyRepository{db: db}
}

func (r *loyaltyRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.LoyaltyProgram, error) {
	var programs []model.LoyaltyProgram
	err := r.db.WithContext(ctx).
		Preload("RewardProduct").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&programs).Error
	return programs, err
}

func (r *loyaltyRepository) GetByID(ctx context.Context, id string) (*model.LoyaltyProgram, error) {
	var program model.LoyaltyProgram
	err := r.db.WithContext(ctx).
		Preload("RewardProduct").
		Where("id = ?", id).
		First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *loyaltyRepository) Create(ctx context.Context, program *model.LoyaltyProgram) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *loyaltyRepository) Redeem(ctx context.Context, programID, orderID string) (*model.LoyaltyProgram, error) {
	var next model.LoyaltyProgram
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return redeemInTx(tx, programID, orderID, &next)
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// redeemInTx 兑换的事务体，供 Redeem 与结账工作单元共用
func redeemInTx(tx *gorm.DB, programID, orderID string, next *model.LoyaltyProgram) error {
	var program model.LoyaltyProgram
	if err := tx.Where("id = ?", programID).First(&program).Error; err != nil {
		return err
	}
	if !program.CanRedeem() {
		return ErrProgramNotRedeemable
	}

	now := time.Now()
	result := tx.Model(&model.LoyaltyProgram{}).
		Where("id = ? AND status = ?", programID, model.LoyaltyStatusCompleted).
		Updates(map[string]interface{}{
			"status":            model.LoyaltyStatusRedeemed,
			"redeemed_at":       &now,
			"redeemed_order_id": orderID,
		})
	if result.Error != nil {
		return result.Error
	}
	// 并发兑换保护：状态条件未命中说明已被其他会话兑换
	if result.RowsAffected == 0 {
		return ErrProgramNotRedeemable
	}

	// 同条款新周期
	*next = model.LoyaltyProgram{
		OwnerID:                  program.OwnerID,
		DepotID:                  program.DepotID,
		TargetPurchases:          program.TargetPurchases,
		CurrentPurchases:         0,
		RewardProductID:          program.RewardProductID,
		RewardDiscountPercentage: program.RewardDiscountPercentage,
		Status:                   model.LoyaltyStatusActive,
	}
	return tx.Create(next).Error
}
