package realtime

import (
	"log"
	"sync"
)

// ==================== 推送通道 ====================

// Op 事件操作类型
type Op string

const (
	OpInsert Op = "insert" // 新增
	OpUpdate Op = "update" // 更新
)

// 被订阅的实体表
const (
	TableOrders        = "orders"
	TableNotifications = "notifications"
)

// Event 服务端推送的变更事件
// Payload 为对应实体的完整行（model.Order / model.Notification）
type Event struct {
	Op      Op
	Table   string
	OwnerID string
	Payload interface{}
}

// Filter 订阅过滤：按实体表 + owner 身份限定
type Filter struct {
	Table   string
	OwnerID string
}

// Channel 推送通道接口
// Subscribe 返回事件流和释放函数；释放后通道关闭
type Channel interface {
	Subscribe(filter Filter) (<-chan Event, func())
}

// ==================== Hub 进程内推送中枢 ====================

// subscription 单个订阅
type subscription struct {
	filter Filter
	events chan Event
}

// Hub 进程内实现的推送通道
// 服务端（或测试）调用 Publish，命中过滤条件的订阅按到达顺序收到事件；
// 传输层不提供序号，乱序投递按字段级 last-write-wins 处理
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscription
}

// NewHub 创建推送中枢
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscription)}
}

// Subscribe 建立订阅，返回事件流与释放函数
func (h *Hub) Subscribe(filter Filter) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	sub := &subscription{
		filter: filter,
		events: make(chan Event, 64),
	}
	h.subs[id] = sub

	release := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if s, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(s.events)
		}
	}
	return sub.events, release
}

// Publish 投递事件到所有命中过滤条件的订阅
// 订阅方消费过慢导致缓冲打满时丢弃并记录，不阻塞发布方
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.filter.Table != "" && sub.filter.Table != event.Table {
			continue
		}
		if sub.filter.OwnerID != "" && sub.filter.OwnerID != event.OwnerID {
			continue
		}
		select {
		case sub.events <- event:
		default:
			log.Printf("[Hub] 订阅缓冲已满，丢弃事件 table=%s op=%s", event.Table, event.Op)
		}
	}
}

// SubscriberCount 当前订阅数（测试与诊断用）
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
