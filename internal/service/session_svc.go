package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/realtime"
	"depot_gas_v1_202608/internal/repository"
	"depot_gas_v1_202608/internal/session"
)

// ==================== SessionService ====================

// SessionDeps 会话服务依赖集合
type SessionDeps struct {
	Channel          realtime.Channel
	ProfileRepo      repository.ProfileRepository
	DepotRepo        repository.DepotRepository
	ProductRepo      repository.ProductRepository
	OrderRepo        repository.OrderRepository
	AddressRepo      repository.AddressRepository
	NotificationRepo repository.NotificationRepository
	ChatRepo         repository.ChatRepository
	LoyaltyRepo      repository.LoyaltyRepository
	FavoriteRepo     repository.FavoriteRepository
}

// SessionService 会话生命周期管理
// 登录打开会话：从持久层装载用户全部数据到内存状态并订阅实时变更；
// 登出关闭会话：停止订阅并丢弃状态
type SessionService struct {
	deps SessionDeps

	// OnNotify 新通知到达时的回调（如弹 toast），可为 nil
	OnNotify func(model.Notification)

	mu         sync.RWMutex
	current    *session.State
	subscriber *realtime.Subscriber
	catalog    []model.Product
}

func NewSessionService(deps SessionDeps) *SessionService {
	return &SessionService{deps: deps}
}

// Open 打开用户会话，装载全部领域数据
// 任一装载失败整体失败，不留半开会话
func (s *SessionService) Open(ctx context.Context, userID string) error {
	profile, err := s.deps.ProfileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return WrapStoreError("session_open", "装载用户资料失败", err)
	}

	state := session.NewState(userID)
	state.SetProfile(*profile)

	addresses, err := s.deps.AddressRepo.ListByOwner(ctx, userID)
	if err != nil {
		return WrapStoreError("session_open", "装载地址失败", err)
	}
	state.SetAddresses(addresses)

	orders, err := s.deps.OrderRepo.ListByOwner(ctx, userID)
	if err != nil {
		return WrapStoreError("session_open", "装载订单失败", err)
	}
	state.SetOrders(orders)

	notifications, err := s.deps.NotificationRepo.ListByOwner(ctx, userID)
	if err != nil {
		return WrapStoreError("session_open", "装载通知失败", err)
	}
	state.SetNotifications(notifications)

	messages, err := s.deps.ChatRepo.ListByOwner(ctx, userID)
	if err != nil {
		return WrapStoreError("session_open", "装载聊天记录失败", err)
	}
	state.SetChatMessages(messages)

	programs, err := s.deps.LoyaltyRepo.ListByOwner(ctx, userID)
	if err != nil {
		return WrapStoreError("session_open", "装载积分计划失败", err)
	}
	state.SetPrograms(programs)

	favorites, err := s.deps.FavoriteRepo.ListProductIDs(ctx, userID)
	if err != nil {
		return WrapStoreError("session_open", "装载收藏失败", err)
	}
	state.SetFavorites(favorites)

	subscriber := realtime.NewSubscriber(s.deps.Channel, state, s.notify)
	subscriber.Start()

	s.mu.Lock()
	old := s.subscriber
	s.current = state
	s.subscriber = subscriber
	s.catalog = nil
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	log.Printf("[Session] 会话已打开: user=%s orders=%d programs=%d", userID, len(orders), len(programs))
	return nil
}

// Close 关闭当前会话
func (s *SessionService) Close() {
	s.mu.Lock()
	subscriber := s.subscriber
	userID := ""
	if s.current != nil {
		userID = s.current.UserID()
	}
	s.current = nil
	s.subscriber = nil
	s.catalog = nil
	s.mu.Unlock()

	if subscriber != nil {
		subscriber.Stop()
	}
	if userID != "" {
		log.Printf("[Session] 会话已关闭: user=%s", userID)
	}
}

// State 当前会话状态，未登录返回 ErrNotAuthenticated
func (s *SessionService) State() (*session.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNotAuthenticated
	}
	return s.current, nil
}

// Reload 重新拉取服务端权威数据（订单、通知、积分计划）
// 用于实时通道恢复后的对账
func (s *SessionService) Reload(ctx context.Context) error {
	state, err := s.State()
	if err != nil {
		return err
	}
	userID := state.UserID()

	orders, err := s.deps.OrderRepo.ListByOwner(ctx, userID)
	if err != nil {
		return WrapStoreError("session_reload", "刷新订单失败", err)
	}
	state.SetOrders(orders)

	notifications, err := s.deps.NotificationRepo.ListByOwner(ctx, userID)
	if err != nil {
		return WrapStoreError("session_reload", "刷新通知失败", err)
	}
	state.SetNotifications(notifications)

	programs, err := s.deps.LoyaltyRepo.ListByOwner(ctx, userID)
	if err != nil {
		return WrapStoreError("session_reload", "刷新积分计划失败", err)
	}
	state.SetPrograms(programs)

	return nil
}

// SelectDepot 选择气站并装载其商品目录
func (s *SessionService) SelectDepot(ctx context.Context, depotID string) error {
	state, err := s.State()
	if err != nil {
		return err
	}

	depot, err := s.deps.DepotRepo.GetByID(ctx, depotID)
	if err != nil {
		return fmt.Errorf("气站不存在: %w", err)
	}
	if !depot.IsActive() {
		return fmt.Errorf("气站已停业: %s", depot.Name)
	}

	products, err := s.deps.ProductRepo.ListByDepot(ctx, depotID)
	if err != nil {
		return WrapStoreError("catalog_load", "装载商品目录失败", err)
	}

	state.SetDepot(depot)

	s.mu.Lock()
	s.catalog = products
	s.mu.Unlock()

	return nil
}

// Catalog 当前气站商品目录快照
func (s *SessionService) Catalog() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	catalog := make([]model.Product, len(s.catalog))
	copy(catalog, s.catalog)
	return catalog
}

// BindAuth 绑定认证提供方：登录打开会话，登出关闭会话
func (s *SessionService) BindAuth(provider AuthProvider) {
	provider.OnAuthStateChange(func(event AuthEvent) {
		switch event.Type {
		case AuthEventSignedIn:
			if err := s.Open(context.Background(), event.UserID); err != nil {
				log.Printf("[Session] 打开会话失败: user=%s err=%v", event.UserID, err)
			}
		case AuthEventSignedOut:
			s.Close()
		}
	})
}

func (s *SessionService) notify(n model.Notification) {
	s.mu.RLock()
	cb := s.OnNotify
	s.mu.RUnlock()
	if cb != nil {
		cb(n)
	}
}
