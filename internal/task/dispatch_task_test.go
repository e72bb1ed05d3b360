package task

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/realtime"
	"depot_gas_v1_202608/internal/repository"
)

func setupDispatchTest(t *testing.T) (*gorm.DB, repository.OrderRepository, *realtime.Hub, *DispatchTask) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Order{}, &model.OrderItem{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	orderRepo := repository.NewOrderRepository(db)
	hub := realtime.NewHub()
	dispatch := NewDispatchTask(orderRepo, hub)
	return db, orderRepo, hub, dispatch
}

func seedOrder(t *testing.T, repo repository.OrderRepository, ownerID string, status model.OrderStatus) *model.Order {
	t.Helper()
	order := &model.Order{
		OwnerID: ownerID, DepotID: "d1",
		SubtotalCents: 10000, GrandTotalCents: 10800, DeliveryFeeCents: 800,
		Address: "Rua A, 100", EstimatedTime: "45 min",
		Status: model.OrderStatusPreparing, PaymentMethod: model.PaymentPix,
	}
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("插入订单失败: %v", err)
	}
	if status != model.OrderStatusPreparing {
		if err := repo.UpdateStatus(context.Background(), order.ID, status); err != nil {
			t.Fatalf("预置状态失败: %v", err)
		}
	}
	return order
}

func TestDispatchTask_AdvancesByDwellTime(t *testing.T) {
	_, repo, hub, dispatch := setupDispatchTest(t)
	ctx := context.Background()

	// 零停留时长使所有在途订单立即到期
	dispatch.SetDurations(0, 0)

	order := seedOrder(t, repo, "u1", model.OrderStatusPreparing)

	events, release := hub.Subscribe(realtime.Filter{Table: realtime.TableOrders, OwnerID: "u1"})
	defer release()

	dispatch.advanceAll(ctx)

	got, _ := repo.GetByID(ctx, order.ID)
	if got.Status != model.OrderStatusDelivering {
		t.Fatalf("Status = %s, want delivering", got.Status)
	}

	// 推进事件已广播
	select {
	case event := <-events:
		payload, ok := event.Payload.(model.Order)
		if !ok || payload.Status != model.OrderStatusDelivering {
			t.Errorf("事件载荷 = %+v, want delivering 订单", event.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("应广播订单更新事件")
	}

	// 第二轮推进到 delivered
	dispatch.advanceAll(ctx)
	got, _ = repo.GetByID(ctx, order.ID)
	if got.Status != model.OrderStatusDelivered {
		t.Errorf("Status = %s, want delivered", got.Status)
	}

	// 终态后不再推进
	dispatch.advanceAll(ctx)
	got, _ = repo.GetByID(ctx, order.ID)
	if got.Status != model.OrderStatusDelivered {
		t.Errorf("终态订单不应再变化, got %s", got.Status)
	}
}

func TestDispatchTask_RespectsDwellTime(t *testing.T) {
	_, repo, _, dispatch := setupDispatchTest(t)
	ctx := context.Background()

	// 远未到期
	dispatch.SetDurations(time.Hour, time.Hour)
	order := seedOrder(t, repo, "u1", model.OrderStatusPreparing)

	dispatch.advanceAll(ctx)

	got, _ := repo.GetByID(ctx, order.ID)
	if got.Status != model.OrderStatusPreparing {
		t.Errorf("未到期订单不应推进, got %s", got.Status)
	}
}

func TestDispatchTask_AdvanceOrderManual(t *testing.T) {
	_, repo, hub, dispatch := setupDispatchTest(t)
	ctx := context.Background()

	order := seedOrder(t, repo, "u1", model.OrderStatusPreparing)

	events, release := hub.Subscribe(realtime.Filter{Table: realtime.TableOrders, OwnerID: "u1"})
	defer release()

	// 管理侧取消
	if err := dispatch.AdvanceOrder(ctx, order.ID, model.OrderStatusCanceled); err != nil {
		t.Fatalf("AdvanceOrder() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, order.ID)
	if got.Status != model.OrderStatusCanceled {
		t.Errorf("Status = %s, want canceled", got.Status)
	}

	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("手动推进也应广播事件")
	}

	// 非法迁移透传状态机错误
	if err := dispatch.AdvanceOrder(ctx, order.ID, model.OrderStatusDelivered); err != repository.ErrInvalidTransition {
		t.Errorf("AdvanceOrder() error = %v, want ErrInvalidTransition", err)
	}
}
