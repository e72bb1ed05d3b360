package realtime

import (
	"log"
	"sync"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/session"
)

// ==================== Subscriber 实时对账订阅器 ====================

// Subscriber 把推送事件合并进会话实体存储
// 登录成功后每个被监听实体类恰好持有一个订阅（orders、notifications），
// 登出/销毁时释放。每个流由单独 goroutine 按到达顺序应用，
// 实体类之间没有跨类顺序保证
type Subscriber struct {
	channel Channel
	state   *session.State

	// 新通知到达时的瞬时提示回调（可为 nil）
	onNotify func(model.Notification)

	mu       sync.Mutex
	releases []func()
	wg       sync.WaitGroup
	started  bool
}

// NewSubscriber 创建订阅器
func NewSubscriber(channel Channel, state *session.State, onNotify func(model.Notification)) *Subscriber {
	return &Subscriber{
		channel:  channel,
		state:    state,
		onNotify: onNotify,
	}
}

// Start 建立 orders 与 notifications 两个订阅并开始消费
func (s *Subscriber) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ownerID := s.state.UserID()

	orderEvents, releaseOrders := s.channel.Subscribe(Filter{Table: TableOrders, OwnerID: ownerID})
	notifyEvents, releaseNotify := s.channel.Subscribe(Filter{Table: TableNotifications, OwnerID: ownerID})
	s.releases = []func(){releaseOrders, releaseNotify}

	s.wg.Add(2)
	go s.consumeOrders(orderEvents)
	go s.consumeNotifications(notifyEvents)

	log.Printf("[Subscriber] 实时订阅已建立 owner=%s", ownerID)
}

// Stop 释放全部订阅并等待消费 goroutine 退出
func (s *Subscriber) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	releases := s.releases
	s.releases = nil
	s.started = false
	s.mu.Unlock()

	for _, release := range releases {
		release()
	}
	s.wg.Wait()
	log.Println("[Subscriber] 实时订阅已释放")
}

// consumeOrders 应用订单事件
// update：按 ID 替换本地副本，本地未持有则无操作（订单可能来自其他会话）；
// insert：本地未持有时置顶（跨会话下单后推送补全）
func (s *Subscriber) consumeOrders(events <-chan Event) {
	defer s.wg.Done()
	for event := range events {
		order, ok := event.Payload.(model.Order)
		if !ok {
			log.Printf("[Subscriber] 忽略非法订单事件载荷 op=%s", event.Op)
			continue
		}
		switch event.Op {
		case OpUpdate:
			s.state.ReplaceOrder(order)
		case OpInsert:
			if !s.state.ReplaceOrder(order) {
				s.state.PrependOrder(order)
			}
		}
	}
}

// consumeNotifications 应用通知事件
// insert：置顶并触发瞬时提示；update：刷新已读标记
func (s *Subscriber) consumeNotifications(events <-chan Event) {
	defer s.wg.Done()
	for event := range events {
		notification, ok := event.Payload.(model.Notification)
		if !ok {
			log.Printf("[Subscriber] 忽略非法通知事件载荷 op=%s", event.Op)
			continue
		}
		switch event.Op {
		case OpInsert:
			s.state.PrependNotification(notification)
			if s.onNotify != nil {
				s.onNotify(notification)
			}
		case OpUpdate:
			s.state.SetNotificationRead(notification.ID, notification.Read)
		}
	}
}
