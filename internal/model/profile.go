package model

import "time"

// ==================== Profile 用户档案 ====================

// 用户角色
const (
	RoleCustomer     = "customer"      // 顾客
	RoleDepotManager = "depot_manager" // 气站管理员
	RoleAdmin        = "admin"         // 平台管理员
)

// Profile 用户档案
// UserID 即认证身份 ID，所有用户域实体以它为 owner 作用域
type Profile struct {
	BaseModel
	UserID       string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:100" json:"-"`
	FullName     string `gorm:"size:255" json:"full_name"`
	Phone        string `gorm:"size:32" json:"phone"`
	Role         string `gorm:"size:32;default:customer;index" json:"role"`

	// 员工归属气站（顾客为空）
	DepotID string `gorm:"type:uuid;index" json:"depot_id"`

	LastLoginAt *time.Time `json:"last_login_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// IsStaff 是否为气站/平台员工
func (p *Profile) IsStaff() bool {
	return p.Role == RoleDepotManager || p.Role == RoleAdmin
}
