package service

import (
	"context"
	"fmt"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/repository"
)

// ==================== NotificationService ====================

// NotificationService 通知与客服会话
type NotificationService struct {
	sessions         *SessionService
	notificationRepo repository.NotificationRepository
	chatRepo         repository.ChatRepository
}

func NewNotificationService(sessions *SessionService, notificationRepo repository.NotificationRepository, chatRepo repository.ChatRepository) *NotificationService {
	return &NotificationService{
		sessions:         sessions,
		notificationRepo: notificationRepo,
		chatRepo:         chatRepo,
	}
}

// List 通知列表（新到旧）
func (s *NotificationService) List() ([]model.Notification, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}
	return state.Notifications(), nil
}

// MarkRead 标记通知已读
// 乐观更新：先改本地再确认远端，远端失败时回滚本地并返回可重试错误
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}

	prev, ok := state.SetNotificationRead(id, true)
	if !ok {
		return fmt.Errorf("通知不存在: %s", id)
	}

	if err := s.notificationRepo.SetRead(ctx, id, true); err != nil {
		state.SetNotificationRead(id, prev)
		return WrapStoreError("notification_sync", "标记已读失败", err)
	}
	return nil
}

// UnreadCount 未读通知数
func (s *NotificationService) UnreadCount() (int, error) {
	state, err := s.sessions.State()
	if err != nil {
		return 0, err
	}
	return state.UnreadCount(), nil
}

// ==================== 客服聊天 ====================

// Messages 聊天记录（旧到新）
func (s *NotificationService) Messages() ([]model.ChatMessage, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}
	return state.ChatMessages(), nil
}

// SendMessage 发送用户消息
// 先写远端再追加本地，失败时本地记录不变；客服回复经实时通道到达
func (s *NotificationService) SendMessage(ctx context.Context, body string) (*model.ChatMessage, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, fmt.Errorf("消息内容不能为空")
	}

	msg := &model.ChatMessage{
		OwnerID: state.UserID(),
		Message: body,
		Sender:  model.ChatSenderUser,
	}
	if depot := state.Depot(); depot != nil {
		msg.DepotID = depot.ID
	}

	if err := s.chatRepo.Create(ctx, msg); err != nil {
		return nil, WrapStoreError("chat_send", "发送消息失败", err)
	}

	state.AppendChatMessage(*msg)
	return msg, nil
}
