package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/repository"
	"depot_gas_v1_202608/internal/session"
)

// ==================== CheckoutService ====================

// 新订单的预计送达时间，后续由配送侧更新
const defaultEstimatedTime = "45 min"

// CheckoutService 结账流程
// 前置校验按固定顺序：收货地址 → 登录态 → 购物车非空
type CheckoutService struct {
	sessions *SessionService
	auth     AuthProvider
	settings *SettingsService
	uow      *repository.CheckoutUnitOfWork
}

func NewCheckoutService(sessions *SessionService, auth AuthProvider, settings *SettingsService, uow *repository.CheckoutUnitOfWork) *CheckoutService {
	return &CheckoutService{
		sessions: sessions,
		auth:     auth,
		settings: settings,
		uow:      uow,
	}
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	PaymentMethod model.PaymentMethod
	// ChangeForCents 现金找零面额（分），仅现金支付时有效
	ChangeForCents int64
}

// Preview 结账预览：合计、配送费与应付总额
type Preview struct {
	SubtotalCents    int64
	DiscountCents    int64
	DeliveryFeeCents int64
	GrandTotalCents  int64
	FreeShipping     bool
}

// PreviewOrder 计算当前购物车的结账预览，不做前置校验
func (s *CheckoutService) PreviewOrder() (*Preview, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}

	totals := state.ComputeTotals()
	fee := s.settings.DeliveryFeeFor(totals.TotalCents)

	return &Preview{
		SubtotalCents:    totals.SubtotalCents,
		DiscountCents:    totals.DiscountCents,
		DeliveryFeeCents: fee,
		GrandTotalCents:  totals.TotalCents + fee,
		FreeShipping:     fee == 0,
	}, nil
}

// PlaceOrder 下单
// 校验通过后在单个存储事务内完成订单创建、积分兑换与确认通知写入；
// 事务失败时会话状态保持原样，可安全重试
func (s *CheckoutService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*model.Order, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}

	snap := state.SnapshotForCheckout()

	// 前置校验，顺序固定
	if snap.Address == nil {
		return nil, ErrMissingAddress
	}
	if !s.auth.GetSession().Valid() {
		return nil, ErrNotAuthenticated
	}
	if len(snap.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	if !req.PaymentMethod.Valid() {
		return nil, ErrUnknownPayment
	}
	changeFor := req.ChangeForCents
	if req.PaymentMethod != model.PaymentMoney {
		changeFor = 0
	}

	feeCents := s.settings.DeliveryFeeFor(snap.Totals.TotalCents)

	order, err := buildOrder(state.UserID(), snap, req.PaymentMethod, changeFor, feeCents)
	if err != nil {
		return nil, err
	}

	notification := &model.Notification{
		OwnerID: state.UserID(),
		Title:   "Pedido confirmado!",
		Message: "Seu gás está a caminho. Acompanhe o pedido em tempo real.",
	}

	result, err := s.uow.PlaceOrder(ctx, order, snap.AppliedProgramID, notification)
	if err != nil {
		return nil, WrapStoreError("checkout", "下单失败", err)
	}

	state.CommitCheckout(*result.Order, snap.AppliedProgramID, result.NextProgram, *result.Notification)

	log.Printf("[Checkout] 下单成功: order=%s total=%.2f fee=%.2f",
		result.Order.ID, float64(result.Order.GrandTotalCents)/100, float64(feeCents)/100)
	return result.Order, nil
}

// buildOrder 由结账快照组装订单，购物车逐条固化为订单条目快照
func buildOrder(ownerID string, snap session.CheckoutSnapshot, method model.PaymentMethod, changeFor, feeCents int64) (*model.Order, error) {
	rawItems, err := json.Marshal(snap.Cart)
	if err != nil {
		return nil, fmt.Errorf("序列化购物车失败: %w", err)
	}

	items := make([]model.OrderItem, 0, len(snap.Cart))
	for _, ci := range snap.Cart {
		item := model.OrderItem{
			ProductID:  ci.ProductID,
			Name:       ci.Name,
			Brand:      ci.Brand,
			ImageURL:   ci.ImageURL,
			PriceCents: ci.PriceCents,
			Quantity:   ci.Quantity,
		}
		// 奖励商品条目打上计划标记，便于对账
		if snap.AppliedProgramID != "" && ci.ProductID == snap.RewardProductID {
			item.AppliedProgramID = snap.AppliedProgramID
		}
		items = append(items, item)
	}

	return &model.Order{
		OwnerID:          ownerID,
		DepotID:          snap.DepotID,
		SubtotalCents:    snap.Totals.SubtotalCents,
		DiscountCents:    snap.Totals.DiscountCents,
		DeliveryFeeCents: feeCents,
		GrandTotalCents:  snap.Totals.TotalCents + feeCents,
		Address:          snap.Address.Address,
		EstimatedTime:    defaultEstimatedTime,
		Status:           model.OrderStatusPreparing,
		PaymentMethod:    method,
		ChangeFor:        changeFor,
		AppliedProgramID: snap.AppliedProgramID,
		RawItems:         rawItems,
		Items:            items,
	}, nil
}
