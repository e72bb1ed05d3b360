package repository

import (
	"context"

	"depot_gas_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== NotificationRepository 通知仓库 ====================

// NotificationRepository 通知仓库接口
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Notification, error)
	SetRead(ctx context.Context, id string, read bool) error
	UnreadCount(ctx context.Context, ownerID string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) SetRead(ctx context.Context, id string, read bool) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Update("read", read).Error
}

func (r *notificationRepository) UnreadCount(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("owner_id = ? AND read = ?", ownerID, false).
		Count(&count).Error
	return count, err
}

// ==================== ChatRepository 客服消息仓库 ====================

// ChatRepository 客服消息仓库接口，只追加
type ChatRepository interface {
	Create(ctx context.Context, message *model.ChatMessage) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建客服消息仓库
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, message *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// ==================== FavoriteRepository 收藏仓库 ====================

// FavoriteRepository 收藏仓库接口
type FavoriteRepository interface {
	Add(ctx context.Context, ownerID, productID string) error
	Remove(ctx context.Context, ownerID, productID string) error
	ListProductIDs(ctx context.Context, ownerID string) ([]string, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository 创建收藏仓库
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, ownerID, productID string) error {
	fav := model.Favorite{OwnerID: ownerID, ProductID: productID}
	return r.db.WithContext(ctx).Create(&fav).Error
}

func (r *favoriteRepository) Remove(ctx context.Context, ownerID, productID string) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		Delete(&model.Favorite{}).Error
}

func (r *favoriteRepository) ListProductIDs(ctx context.Context, ownerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("owner_id = ?", ownerID).
		Pluck("product_id", &ids).Error
	return ids, err
}
