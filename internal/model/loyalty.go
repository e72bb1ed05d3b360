package model

import "time"

// ==================== 忠诚度计划状态 ====================

// LoyaltyStatus 忠诚度计划状态
const (
	LoyaltyStatusActive    = "active"    // 进行中，购买计数累积
	LoyaltyStatusCompleted = "completed" // 已达标，可在结账时兑换
	LoyaltyStatusRedeemed  = "redeemed"  // 已兑换，一次性消耗
)

// ==================== LoyaltyProgram 忠诚度计划 ====================

// LoyaltyProgram 按客户的购买目标计划
// 由气站运营方创建；current_purchases 由服务端随订单递增；
// 兑换后插入一个同条款的新 active 计划延续周期
type LoyaltyProgram struct {
	BaseModel
	OwnerID string `gorm:"type:uuid;index;not null" json:"owner_id"`
	DepotID string `gorm:"type:uuid;index;not null" json:"depot_id"`

	TargetPurchases  int `gorm:"not null" json:"target_purchases"`
	CurrentPurchases int `gorm:"default:0" json:"current_purchases"`

	// 奖励：指定商品按百分比折扣
	RewardProductID          string   `gorm:"type:uuid;index;not null" json:"reward_product_id"`
	RewardProduct            *Product `gorm:"foreignKey:RewardProductID" json:"reward_product,omitempty"`
	RewardDiscountPercentage int      `gorm:"not null" json:"reward_discount_percentage"` // 1-100

	Status string `gorm:"size:16;default:active;index" json:"status"`

	// 兑换记录
	RedeemedAt      *time.Time `json:"redeemed_at"`
	RedeemedOrderID string     `gorm:"type:uuid" json:"redeemed_order_id"`
}

func (LoyaltyProgram) TableName() string {
	return "loyalty_programs"
}

// IsCompleted 是否已达标可兑换
func (p *LoyaltyProgram) IsCompleted() bool {
	return p.Status == LoyaltyStatusCompleted
}

// CanRedeem 检查是否可以兑换
func (p *LoyaltyProgram) CanRedeem() bool {
	return p.Status == LoyaltyStatusCompleted
}

// Progress 进度比例（0-1）
func (p *LoyaltyProgram) Progress() float64 {
	if p.TargetPurchases <= 0 {
		return 0
	}
	return float64(p.CurrentPurchases) / float64(p.TargetPurchases)
}

// DiscountCentsFor 计算奖励商品单价对应的折扣金额（分，向下取整）
func (p *LoyaltyProgram) DiscountCentsFor(priceCents int64) int64 {
	if p.RewardDiscountPercentage <= 0 {
		return 0
	}
	return priceCents * int64(p.RewardDiscountPercentage) / 100
}
