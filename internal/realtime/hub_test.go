package realtime

import (
	"testing"
	"time"

	"depot_gas_v1_202608/internal/model"
)

func recvEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case event := <-events:
		return event
	case <-time.After(time.Second):
		t.Fatal("等待事件超时")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, events <-chan Event) {
	t.Helper()
	select {
	case event := <-events:
		t.Fatalf("不应收到事件: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishFilters(t *testing.T) {
	hub := NewHub()

	events, release := hub.Subscribe(Filter{Table: TableOrders, OwnerID: "u1"})
	defer release()

	order := model.Order{OwnerID: "u1"}
	order.ID = "o1"
	hub.Publish(Event{Op: OpUpdate, Table: TableOrders, OwnerID: "u1", Payload: order})

	got := recvEvent(t, events)
	if got.Op != OpUpdate || got.Table != TableOrders {
		t.Errorf("事件 = %+v, want orders/update", got)
	}

	// 其他 owner 的事件被过滤
	hub.Publish(Event{Op: OpUpdate, Table: TableOrders, OwnerID: "u2", Payload: order})
	// 其他表的事件被过滤
	hub.Publish(Event{Op: OpInsert, Table: TableNotifications, OwnerID: "u1", Payload: model.Notification{}})
	assertNoEvent(t, events)
}

func TestHub_Release(t *testing.T) {
	hub := NewHub()

	events, release := hub.Subscribe(Filter{Table: TableOrders, OwnerID: "u1"})
	if hub.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", hub.SubscriberCount())
	}

	release()
	if hub.SubscriberCount() != 0 {
		t.Errorf("释放后 SubscriberCount = %d, want 0", hub.SubscriberCount())
	}

	// 释放后通道关闭
	if _, open := <-events; open {
		t.Error("释放后事件通道应关闭")
	}

	// 重复释放不恐慌
	release()
}
