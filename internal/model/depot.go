package model

// ==================== Depot 气站（租户） ====================

// DepotStatus 气站状态
const (
	DepotStatusActive   = 1 // 营业中
	DepotStatusInactive = 0 // 停用
)

// Depot 气站，多租户隔离的核心实体
// 商品、购物车、订单、会话全部以单个气站为作用域
type Depot struct {
	BaseModel
	Name   string `gorm:"size:255;not null" json:"name"`
	City   string `gorm:"size:100;index" json:"city"`
	Phone  string `gorm:"size:32" json:"phone"`
	Banner string `gorm:"size:500" json:"banner"`
	Status int    `gorm:"default:1;index" json:"status"`
}

func (Depot) TableName() string {
	return "depots"
}

// IsActive 是否营业中
func (d *Depot) IsActive() bool {
	return d.Status == DepotStatusActive
}

// ==================== AppSetting 全局配置 ====================

// 配置键
const (
	SettingFreeShippingThreshold = "free_shipping_threshold" // 免运费门槛（货币单位）
	SettingDeliveryFee           = "delivery_fee"            // 固定配送费（货币单位）
	SettingPromoBanner           = "promo_banner"            // 首页促销横幅
)

// AppSetting 键值配置表
// 缺失的键由 SettingsService 回退为硬编码默认值
type AppSetting struct {
	BaseModel
	Key   string `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value string `gorm:"size:500" json:"value"`
}

func (AppSetting) TableName() string {
	return "app_settings"
}
