package model

import (
	"gorm.io/datatypes"
)

// ==================== 订单状态 ====================

// OrderStatus 订单状态，服务端权威推进：
// preparing → delivering → delivered；canceled 仅可由 preparing/delivering 进入
type OrderStatus string

const (
	OrderStatusPreparing  OrderStatus = "preparing"  // 备货中
	OrderStatusDelivering OrderStatus = "delivering" // 配送中
	OrderStatusDelivered  OrderStatus = "delivered"  // 已送达
	OrderStatusCanceled   OrderStatus = "canceled"   // 已取消
)

// Valid 是否为已知状态
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPreparing, OrderStatusDelivering, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo 状态机校验：线性推进，不允许回退
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPreparing:
		return next == OrderStatusDelivering || next == OrderStatusCanceled
	case OrderStatusDelivering:
		return next == OrderStatusDelivered || next == OrderStatusCanceled
	}
	return false
}

// ==================== 支付方式 ====================

// PaymentMethod 支付方式（只记录，不执行扣款）
type PaymentMethod string

const (
	PaymentPix   PaymentMethod = "pix"   // PIX 即时转账
	PaymentCard  PaymentMethod = "card"  // 信用卡
	PaymentMoney PaymentMethod = "money" // 货到付款现金
)

// Valid 是否为已知支付方式
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentCard, PaymentMoney:
		return true
	}
	return false
}

// ==================== Order 订单主表 ====================

// Order 订单
// 仅由结账流程创建；状态仅由服务端事件（实时推送/管理操作）推进；
// 顾客侧会话永不删除订单
type Order struct {
	BaseModel
	OwnerID string `gorm:"type:uuid;index;not null" json:"owner_id"`
	DepotID string `gorm:"type:uuid;index;not null" json:"depot_id"`

	// 金额（分为单位存储）
	SubtotalCents    int64 `json:"subtotal_cents"`
	DiscountCents    int64 `json:"discount_cents"`
	DeliveryFeeCents int64 `json:"delivery_fee_cents"`
	GrandTotalCents  int64 `json:"grand_total_cents"`

	// 配送
	Address       string `gorm:"size:500;not null" json:"address"`
	EstimatedTime string `gorm:"size:32" json:"estimated_time"`

	// 状态与支付
	Status        OrderStatus   `gorm:"size:32;index;default:preparing" json:"status"`
	PaymentMethod PaymentMethod `gorm:"size:16" json:"payment_method"`
	ChangeFor     int64         `gorm:"default:0" json:"change_for"` // 现金找零（分），仅 money 有意义

	// 已兑换的忠诚度计划（可为空）
	AppliedProgramID string `gorm:"type:uuid" json:"applied_program_id"`

	// 下单时的条目原始快照（JSONB）
	RawItems datatypes.JSON `gorm:"type:jsonb" json:"-"`

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

// GetSubtotal 获取小计金额（元）
func (o *Order) GetSubtotal() float64 {
	return float64(o.SubtotalCents) / 100
}

// GetDiscount 获取折扣（元）
func (o *Order) GetDiscount() float64 {
	return float64(o.DiscountCents) / 100
}

// GetDeliveryFee 获取配送费（元）
func (o *Order) GetDeliveryFee() float64 {
	return float64(o.DeliveryFeeCents) / 100
}

// GetGrandTotal 获取总金额（元）
func (o *Order) GetGrandTotal() float64 {
	return float64(o.GrandTotalCents) / 100
}

// IsFinal 是否为终态
func (o *Order) IsFinal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCanceled
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单项，下单后不可变的商品快照
type OrderItem struct {
	BaseModel
	OrderID   string `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID string `gorm:"type:uuid;index" json:"product_id"`

	Name       string `gorm:"size:255" json:"name"`
	Brand      string `gorm:"size:100" json:"brand"`
	ImageURL   string `gorm:"size:500" json:"image_url"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `gorm:"default:1" json:"quantity"`

	// 该条目承载的已兑换忠诚度计划（可为空）
	AppliedProgramID string `gorm:"type:uuid" json:"applied_program_id"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// GetPrice 获取单价（元）
func (i *OrderItem) GetPrice() float64 {
	return float64(i.PriceCents) / 100
}

// GetTotalPrice 获取总价（元）
func (i *OrderItem) GetTotalPrice() float64 {
	return float64(i.PriceCents*int64(i.Quantity)) / 100
}
