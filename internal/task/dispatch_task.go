package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/realtime"
	"depot_gas_v1_202608/internal/repository"
)

// ==================== DispatchTask 配送推进任务 ====================

// DispatchTask 配送侧订单状态推进
// 订单状态唯一的权威推进者：按停留时长推进 preparing → delivering → delivered，
// 每次推进落库后向实时通道发布更新事件，顾客会话据此对账
type DispatchTask struct {
	orderRepo repository.OrderRepository
	hub       *realtime.Hub
	cron      *cron.Cron

	// 各阶段停留时长
	preparingDuration  time.Duration
	deliveringDuration time.Duration
}

// NewDispatchTask 创建配送推进任务
func NewDispatchTask(orderRepo repository.OrderRepository, hub *realtime.Hub) *DispatchTask {
	return &DispatchTask{
		orderRepo:          orderRepo,
		hub:                hub,
		cron:               cron.New(cron.WithSeconds()),
		preparingDuration:  10 * time.Minute,
		deliveringDuration: 35 * time.Minute,
	}
}

// SetDurations 设置各阶段停留时长
func (t *DispatchTask) SetDurations(preparing, delivering time.Duration) {
	t.preparingDuration = preparing
	t.deliveringDuration = delivering
}

// Start 启动定时任务
func (t *DispatchTask) Start() {
	// 推进检查：每分钟
	_, _ = t.cron.AddFunc("0 * * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		t.advanceAll(ctx)
	})

	t.cron.Start()
	log.Println("[DispatchTask] 已启动 (每分钟检查在途订单)")
}

// Stop 停止任务
func (t *DispatchTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[DispatchTask] 已停止")
}

// AdvanceNow 立即执行一轮推进检查
func (t *DispatchTask) AdvanceNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		t.advanceAll(ctx)
	}()
}

// AdvanceOrder 手动推进单个订单到指定状态（管理操作）
func (t *DispatchTask) AdvanceOrder(ctx context.Context, orderID string, status model.OrderStatus) error {
	if err := t.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	t.publishUpdated(ctx, orderID)
	return nil
}

func (t *DispatchTask) advanceAll(ctx context.Context) {
	orders, err := t.orderRepo.ListInFlight(ctx)
	if err != nil {
		log.Printf("[DispatchTask] 获取在途订单失败: %v", err)
		return
	}

	advanced := 0
	now := time.Now()
	for i := range orders {
		order := &orders[i]
		next, due := t.nextStatus(order, now)
		if !due {
			continue
		}
		if err := t.orderRepo.UpdateStatus(ctx, order.ID, next); err != nil {
			log.Printf("[DispatchTask] 订单 %s 推进到 %s 失败: %v", order.ID, next, err)
			continue
		}
		t.publishUpdated(ctx, order.ID)
		advanced++
	}

	if advanced > 0 {
		log.Printf("[DispatchTask] 本轮推进 %d 个订单", advanced)
	}
}

// nextStatus 根据当前阶段的停留时长裁决下一状态
func (t *DispatchTask) nextStatus(order *model.Order, now time.Time) (model.OrderStatus, bool) {
	switch order.Status {
	case model.OrderStatusPreparing:
		if now.Sub(order.CreatedAt) >= t.preparingDuration {
			return model.OrderStatusDelivering, true
		}
	case model.OrderStatusDelivering:
		if now.Sub(order.UpdatedAt) >= t.deliveringDuration {
			return model.OrderStatusDelivered, true
		}
	}
	return "", false
}

// publishUpdated 重读落库后的订单并广播更新事件
func (t *DispatchTask) publishUpdated(ctx context.Context, orderID string) {
	order, err := t.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		log.Printf("[DispatchTask] 重读订单 %s 失败: %v", orderID, err)
		return
	}
	t.hub.Publish(realtime.Event{
		Op:      realtime.OpUpdate,
		Table:   realtime.TableOrders,
		OwnerID: order.OwnerID,
		Payload: *order,
	})
}
