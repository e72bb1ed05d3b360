package model

// ==================== CartItem 购物车条目 ====================

// CartItem 购物车条目：商品快照 + 数量
// 仅存在于会话内存中，不落库；下单时转为 OrderItem 快照
// 不变式：同一购物车内所有条目的 DepotID 必须一致
type CartItem struct {
	ProductID string `json:"product_id"`
	DepotID   string `json:"depot_id"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	ImageURL  string `json:"image_url"`

	PriceCents int64 `json:"price_cents"`
	Quantity   int   `json:"quantity"`

	// 结账时打上的已应用忠诚度计划标记（可为空）
	AppliedProgramID string `json:"applied_program_id,omitempty"`
}

// NewCartItem 由商品目录条目生成快照，数量为 1
func NewCartItem(p *Product) CartItem {
	return CartItem{
		ProductID:  p.ID,
		DepotID:    p.DepotID,
		Name:       p.Name,
		Brand:      p.Brand,
		ImageURL:   p.ImageURL,
		PriceCents: p.PriceCents,
		Quantity:   1,
	}
}

// GetPrice 获取单价（元）
func (i *CartItem) GetPrice() float64 {
	return float64(i.PriceCents) / 100
}

// GetTotalPrice 获取条目总价（元）
func (i *CartItem) GetTotalPrice() float64 {
	return float64(i.PriceCents*int64(i.Quantity)) / 100
}
