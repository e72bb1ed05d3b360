package session

import (
	"sync"

	"depot_gas_v1_202608/internal/model"
)

// ==================== State 会话实体存储 ====================

// State 当前登录身份的内存实体存储
// 独占持有购物车、订单、地址、通知、客服消息、忠诚度计划与收藏；
// 远端存储是系统记录，State 只是会话副本。
// 调用方回调与实时订阅 goroutine 会并发写入，因此用互斥锁保护；
// 单次方法调用对调用方而言是原子的。
type State struct {
	mu sync.RWMutex

	userID string

	profile model.Profile
	depot   *model.Depot

	cart             []model.CartItem
	appliedProgramID string

	orders        []model.Order
	addresses     []model.Address
	selectedAddrID string
	notifications []model.Notification
	chatMessages  []model.ChatMessage
	programs      []model.LoyaltyProgram
	favorites     map[string]bool
}

// NewState 创建空会话状态（登录时）
func NewState(userID string) *State {
	return &State{
		userID:    userID,
		favorites: make(map[string]bool),
	}
}

// UserID 当前身份
func (s *State) UserID() string {
	return s.userID
}

// ==================== 档案与气站 ====================

// SetProfile 设置用户档案
func (s *State) SetProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// Profile 获取用户档案
func (s *State) Profile() model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetDepot 设置当前气站
func (s *State) SetDepot(d *model.Depot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depot = d
}

// Depot 获取当前气站
func (s *State) Depot() *model.Depot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.depot
}

// ==================== 购物车 ====================

// AddCartItem 加入购物车
// 购物车非空且商品属于其他气站时拒绝（购物车保持不变）；
// 已存在同商品则数量 +1，否则追加数量为 1 的新条目
func (s *State) AddCartItem(item model.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) > 0 && s.cart[0].DepotID != item.DepotID {
		return ErrDepotMismatch
	}

	for i := range s.cart {
		if s.cart[i].ProductID == item.ProductID {
			s.cart[i].Quantity++
			return nil
		}
	}

	item.Quantity = 1
	s.cart = append(s.cart, item)
	return nil
}

// RemoveCartItem 移除条目，幂等
// 若被移除条目承载着当前已应用的奖励商品，同时清除应用标记
func (s *State) RemoveCartItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCartItemLocked(productID)
}

func (s *State) removeCartItemLocked(productID string) {
	next := s.cart[:0]
	for _, item := range s.cart {
		if item.ProductID != productID {
			next = append(next, item)
		}
	}
	s.cart = next

	if s.appliedProgramID != "" {
		if p := s.programLocked(s.appliedProgramID); p != nil && p.RewardProductID == productID {
			s.appliedProgramID = ""
		}
	}
}

// SetCartQuantity 调整数量；qty <= 0 等价于移除
func (s *State) SetCartQuantity(productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		s.removeCartItemLocked(productID)
		return
	}
	for i := range s.cart {
		if s.cart[i].ProductID == productID {
			s.cart[i].Quantity = qty
			return
		}
	}
}

// Cart 购物车快照（副本）
func (s *State) Cart() []model.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart := make([]model.CartItem, len(s.cart))
	copy(cart, s.cart)
	return cart
}

// CartDepotID 购物车当前锁定的气站，空车返回空串
func (s *State) CartDepotID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.cart) == 0 {
		return ""
	}
	return s.cart[0].DepotID
}

// SubtotalCents 小计 = Σ 单价 × 数量，纯函数
func (s *State) SubtotalCents() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtotalLocked()
}

func (s *State) subtotalLocked() int64 {
	var total int64
	for _, item := range s.cart {
		total += item.PriceCents * int64(item.Quantity)
	}
	return total
}

// CartItemCount 数量合计，用于角标展示
func (s *State) CartItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, item := range s.cart {
		count += item.Quantity
	}
	return count
}

// ClearCart 清空购物车与已应用奖励
func (s *State) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
	s.appliedProgramID = ""
}

// ==================== 忠诚度奖励 ====================

// SetPrograms 整体替换忠诚度计划列表
func (s *State) SetPrograms(programs []model.LoyaltyProgram) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs = programs
}

// Programs 计划列表快照（副本）
func (s *State) Programs() []model.LoyaltyProgram {
	s.mu.RLock()
	defer s.mu.RUnlock()
	programs := make([]model.LoyaltyProgram, len(s.programs))
	copy(programs, s.programs)
	return programs
}

func (s *State) programLocked(id string) *model.LoyaltyProgram {
	for i := range s.programs {
		if s.programs[i].ID == id {
			return &s.programs[i]
		}
	}
	return nil
}

// EligiblePrograms 当前购物车可用的奖励：
// status 为 completed 且奖励商品已在购物车中
func (s *State) EligiblePrograms() []model.LoyaltyProgram {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inCart := make(map[string]bool, len(s.cart))
	for _, item := range s.cart {
		inCart[item.ProductID] = true
	}

	var eligible []model.LoyaltyProgram
	for _, p := range s.programs {
		if p.IsCompleted() && inCart[p.RewardProductID] {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// ApplyProgram 应用奖励
// 已应用其他计划时拒绝（每单最多一个奖励）；重复应用同一计划为幂等
func (s *State) ApplyProgram(programID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appliedProgramID != "" && s.appliedProgramID != programID {
		return ErrAlreadyApplied
	}
	if s.programLocked(programID) == nil {
		return ErrUnknownProgram
	}
	s.appliedProgramID = programID
	return nil
}

// RemoveProgram 清除应用标记，幂等
func (s *State) RemoveProgram() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appliedProgramID = ""
}

// AppliedProgramID 当前已应用的计划 ID，未应用返回空串
func (s *State) AppliedProgramID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appliedProgramID
}

// Totals 订单金额分解（分）
type Totals struct {
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
}

// ComputeTotals 计算 {小计, 折扣, 合计}
// 折扣 = 奖励商品单价 × 折扣百分比，仅当已应用计划的奖励商品在购物车中；
// 纯函数：相同状态下重复调用结果一致
func (s *State) ComputeTotals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := Totals{SubtotalCents: s.subtotalLocked()}

	if s.appliedProgramID != "" {
		if p := s.programLocked(s.appliedProgramID); p != nil {
			for _, item := range s.cart {
				if item.ProductID == p.RewardProductID {
					t.DiscountCents = p.DiscountCentsFor(item.PriceCents)
					break
				}
			}
		}
	}

	t.TotalCents = t.SubtotalCents - t.DiscountCents
	return t
}

// ==================== 订单 ====================

// SetOrders 整体替换订单列表
func (s *State) SetOrders(orders []model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
}

// Orders 订单列表快照（副本）
func (s *State) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]model.Order, len(s.orders))
	copy(orders, s.orders)
	return orders
}

// PrependOrder 新订单置于列表头部
func (s *State) PrependOrder(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append([]model.Order{order}, s.orders...)
}

// ReplaceOrder 按 ID 替换订单（实时更新事件）
// 本地未持有该 ID 时为无操作并返回 false —— 订单可能来自其他会话
func (s *State) ReplaceOrder(order model.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == order.ID {
			s.orders[i] = order
			return true
		}
	}
	return false
}

// ==================== 地址 ====================

// SetAddresses 整体替换地址列表
// 当前选中地址若仍在新列表中则保留选择，否则按既定规则重选：
// 默认标记者优先（按 created_at 倒序，最新创建的默认胜出）→ 列表第一个 → 无
func (s *State) SetAddresses(addresses []model.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses = addresses
	for _, a := range addresses {
		if a.ID == s.selectedAddrID {
			return
		}
	}
	s.selectedAddrID = resolveDefaultAddress(addresses)
}

// resolveDefaultAddress 默认地址裁决
// 入参按 created_at 倒序，故第一个 is_default 即最新创建的默认
func resolveDefaultAddress(addresses []model.Address) string {
	for _, a := range addresses {
		if a.IsDefault {
			return a.ID
		}
	}
	if len(addresses) > 0 {
		return addresses[0].ID
	}
	return ""
}

// Addresses 地址列表快照（副本）
func (s *State) Addresses() []model.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addresses := make([]model.Address, len(s.addresses))
	copy(addresses, s.addresses)
	return addresses
}

// SelectAddress 在已加载地址中纯选择，不触达远端存储
func (s *State) SelectAddress(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.addresses {
		if a.ID == id {
			s.selectedAddrID = id
			return nil
		}
	}
	return ErrUnknownAddress
}

// SelectedAddress 当前选中地址，未选中返回 nil
func (s *State) SelectedAddress() *model.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.addresses {
		if s.addresses[i].ID == s.selectedAddrID {
			a := s.addresses[i]
			return &a
		}
	}
	return nil
}

// ==================== 通知 ====================

// SetNotifications 整体替换通知列表
func (s *State) SetNotifications(notifications []model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = notifications
}

// Notifications 通知列表快照（副本）
func (s *State) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notifications := make([]model.Notification, len(s.notifications))
	copy(notifications, s.notifications)
	return notifications
}

// PrependNotification 新通知置于列表头部（实时插入事件）
func (s *State) PrependNotification(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]model.Notification{n}, s.notifications...)
}

// SetNotificationRead 切换已读标记，返回先前值用于乐观回滚
func (s *State) SetNotificationRead(id string, read bool) (prev bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			prev = s.notifications[i].Read
			s.notifications[i].Read = read
			return prev, true
		}
	}
	return false, false
}

// UnreadCount 未读通知数
func (s *State) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// ==================== 客服消息 ====================

// SetChatMessages 整体替换消息列表
func (s *State) SetChatMessages(messages []model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatMessages = messages
}

// ChatMessages 消息列表快照（副本）
func (s *State) ChatMessages() []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := make([]model.ChatMessage, len(s.chatMessages))
	copy(messages, s.chatMessages)
	return messages
}

// AppendChatMessage 追加消息（只追加）
func (s *State) AppendChatMessage(m model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatMessages = append(s.chatMessages, m)
}

// ==================== 收藏 ====================

// SetFavorites 整体替换收藏集合
func (s *State) SetFavorites(productIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites = make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		s.favorites[id] = true
	}
}

// IsFavorite 是否已收藏
func (s *State) IsFavorite(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favorites[productID]
}

// SetFavorite 置位收藏标记
func (s *State) SetFavorite(productID string, fav bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fav {
		s.favorites[productID] = true
	} else {
		delete(s.favorites, productID)
	}
}

// ==================== 结账辅助 ====================

// CheckoutSnapshot 单次加锁读取结账所需的全部输入，保证一致性
type CheckoutSnapshot struct {
	Cart             []model.CartItem
	AppliedProgramID string
	// RewardProductID 已应用计划的奖励商品，用于订单条目打标
	RewardProductID string
	Totals          Totals
	Address         *model.Address
	DepotID         string
}

// SnapshotForCheckout 结账输入快照
func (s *State) SnapshotForCheckout() CheckoutSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := CheckoutSnapshot{
		AppliedProgramID: s.appliedProgramID,
	}
	snap.Cart = make([]model.CartItem, len(s.cart))
	copy(snap.Cart, s.cart)
	if len(s.cart) > 0 {
		snap.DepotID = s.cart[0].DepotID
	}

	snap.Totals.SubtotalCents = s.subtotalLocked()
	if s.appliedProgramID != "" {
		if p := s.programLocked(s.appliedProgramID); p != nil {
			snap.RewardProductID = p.RewardProductID
			for _, item := range s.cart {
				if item.ProductID == p.RewardProductID {
					snap.Totals.DiscountCents = p.DiscountCentsFor(item.PriceCents)
					break
				}
			}
		}
	}
	snap.Totals.TotalCents = snap.Totals.SubtotalCents - snap.Totals.DiscountCents

	for i := range s.addresses {
		if s.addresses[i].ID == s.selectedAddrID {
			a := s.addresses[i]
			snap.Address = &a
			break
		}
	}

	return snap
}

// CommitCheckout 结账成功后的本地状态变更，单次加锁内完成：
// 新订单置顶、清空购物车、清除应用标记、
// 已兑换计划状态翻转并插入新周期计划、确认通知置顶
func (s *State) CommitCheckout(order model.Order, redeemedID string, next *model.LoyaltyProgram, notification model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = append([]model.Order{order}, s.orders...)
	s.cart = nil
	s.appliedProgramID = ""

	if redeemedID != "" && next != nil {
		for i := range s.programs {
			if s.programs[i].ID == redeemedID {
				s.programs[i].Status = model.LoyaltyStatusRedeemed
				s.programs[i].RedeemedOrderID = order.ID
				break
			}
		}
		s.programs = append([]model.LoyaltyProgram{*next}, s.programs...)
	}

	s.notifications = append([]model.Notification{notification}, s.notifications...)
}
