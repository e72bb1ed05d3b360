package model

// ==================== Notification 通知 ====================

// Notification 用户通知
// 由服务端创建（下单确认、状态变更）；客户端仅可切换已读标记，
// 且为乐观更新：先本地置位，远端确认失败则回滚
type Notification struct {
	BaseModel
	OwnerID string `gorm:"type:uuid;index;not null" json:"owner_id"`
	Title   string `gorm:"size:255;not null" json:"title"`
	Message string `gorm:"size:500" json:"message"`
	Read    bool   `gorm:"default:false;index" json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}

// ==================== ChatMessage 客服消息 ====================

// 消息发送方
const (
	ChatSenderUser    = "user"    // 顾客
	ChatSenderSupport = "support" // 客服
)

// ChatMessage 客服对话消息，只追加
type ChatMessage struct {
	BaseModel
	OwnerID string `gorm:"type:uuid;index;not null" json:"owner_id"`
	DepotID string `gorm:"type:uuid;index" json:"depot_id"`
	Message string `gorm:"size:1000;not null" json:"message"`
	Sender  string `gorm:"size:16;not null" json:"sender"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// FromUser 是否为顾客发送
func (m *ChatMessage) FromUser() bool {
	return m.Sender == ChatSenderUser
}
