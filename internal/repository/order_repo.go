package repository

import (
	"context"
	"errors"

	"depot_gas_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ErrInvalidTransition 订单状态迁移不合法
var ErrInvalidTransition = errors.New("订单状态迁移不合法")

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
// 创建仅发生在结账流程；状态推进是服务端权威行为，
// 顾客侧会话不调用 UpdateStatus
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error)
	ListInFlight(ctx context.Context) ([]model.Order, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)

	// UpdateStatus 按状态机校验后推进状态（服务端/管理侧调用）
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	// Items 随主记录级联插入
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// ListInFlight 列出全部未终结订单（配送侧推进用）
func (r *orderRepository) ListInFlight(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("status IN ?", []model.OrderStatus{model.OrderStatusPreparing, model.OrderStatusDelivering}).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidTransition
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.Where("id = ?", id).First(&order).Error; err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(status) {
			return ErrInvalidTransition
		}
		return tx.Model(&model.Order{}).
			Where("id = ?", id).
			Update("status", status).Error
	})
}

// ==================== CheckoutUnitOfWork 结账工作单元 ====================

// CheckoutUnitOfWork 结账工作单元（事务）
// 订单落库、忠诚度兑换翻转、确认通知三者在同一事务内完成，
// 任一失败整体回滚，调用方状态保持不变
type CheckoutUnitOfWork struct {
	db *gorm.DB
}

// NewCheckoutUnitOfWork 创建结账工作单元
func NewCheckoutUnitOfWork(db *gorm.DB) *CheckoutUnitOfWork {
	return &CheckoutUnitOfWork{db: db}
}

// CheckoutResult 结账事务产出
type CheckoutResult struct {
	Order        *model.Order
	NextProgram  *model.LoyaltyProgram // 兑换后的新周期计划，无兑换时为 nil
	Notification *model.Notification
}

// PlaceOrder 在单个事务内：创建订单（含条目）→ 兑换忠诚度计划（可选）→ 写入确认通知
func (u *CheckoutUnitOfWork) PlaceOrder(ctx context.Context, order *model.Order, appliedProgramID string, notification *model.Notification) (*CheckoutResult, error) {
	result := &CheckoutResult{Order: order, Notification: notification}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		if appliedProgramID != "" {
			var next model.LoyaltyProgram
			if err := redeemInTx(tx, appliedProgramID, order.ID, &next); err != nil {
				return err
			}
			result.NextProgram = &next
		}

		notification.OwnerID = order.OwnerID
		return tx.Create(notification).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
