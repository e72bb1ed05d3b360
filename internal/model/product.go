package model

import (
	"github.com/lib/pq"
)

// ==================== Product 商品 ====================

// Product 商品目录条目
// 会话引擎视角下只读，由气站运营方维护
type Product struct {
	BaseModel
	DepotID string `gorm:"type:uuid;index;not null" json:"depot_id"`
	Depot   *Depot `gorm:"foreignKey:DepotID" json:"-"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Brand       string `gorm:"size:100;index" json:"brand"`
	ImageURL    string `gorm:"size:500" json:"image_url"`

	// 价格（分为单位存储）
	PriceCents         int64 `gorm:"not null" json:"price_cents"`
	OriginalPriceCents int64 `gorm:"default:0" json:"original_price_cents"` // 0 表示无划线价

	// 评价
	Rating      float64 `gorm:"default:0" json:"rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`

	// 营销
	Promotion string         `gorm:"size:100" json:"promotion"` // 促销标签，空串表示无
	Featured  bool           `gorm:"default:false;index" json:"featured"`
	Tags      pq.StringArray `gorm:"type:text[]" json:"tags"`
}

func (Product) TableName() string {
	return "products"
}

// GetPrice 获取单价（元）
func (p *Product) GetPrice() float64 {
	return float64(p.PriceCents) / 100
}

// GetOriginalPrice 获取划线价（元）
func (p *Product) GetOriginalPrice() float64 {
	return float64(p.OriginalPriceCents) / 100
}

// HasDiscount 是否有划线价
func (p *Product) HasDiscount() bool {
	return p.OriginalPriceCents > p.PriceCents
}

// ==================== Favorite 收藏 ====================

// Favorite 用户收藏的商品
type Favorite struct {
	BaseModel
	OwnerID   string `gorm:"type:uuid;index:idx_fav_owner_product,unique;not null" json:"owner_id"`
	ProductID string `gorm:"type:uuid;index:idx_fav_owner_product,unique;not null" json:"product_id"`
}

func (Favorite) TableName() string {
	return "favorites"
}
