package model

// ==================== Address 收货地址 ====================

// Address 收货地址
// 不变式：同一 owner 最多一个 is_default = true，
// 由 AddressRepository 在事务内维护
type Address struct {
	BaseModel
	OwnerID   string `gorm:"type:uuid;index;not null" json:"owner_id"`
	Label     string `gorm:"size:100" json:"label"` // 显示名，如 "Casa"、"Trabalho"
	Address   string `gorm:"size:500;not null" json:"address"`
	IsDefault bool   `gorm:"default:false;index" json:"is_default"`
}

func (Address) TableName() string {
	return "addresses"
}
