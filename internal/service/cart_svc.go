package service

import (
	"context"
	"fmt"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/repository"
	"depot_gas_v1_202608/internal/session"
)

// ==================== CartService ====================

// CartService 购物车操作
// 购物车是纯会话内状态，不落库；收藏夹落库
type CartService struct {
	sessions     *SessionService
	productRepo  repository.ProductRepository
	favoriteRepo repository.FavoriteRepository
}

func NewCartService(sessions *SessionService, productRepo repository.ProductRepository, favoriteRepo repository.FavoriteRepository) *CartService {
	return &CartService{
		sessions:     sessions,
		productRepo:  productRepo,
		favoriteRepo: favoriteRepo,
	}
}

// AddProduct 按商品ID加入购物车
// 已在车中则数量+1；与现有条目气站不同返回 session.ErrDepotMismatch
func (s *CartService) AddProduct(ctx context.Context, productID string) error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("商品不存在: %w", err)
	}

	return state.AddCartItem(model.NewCartItem(product))
}

// AddItem 直接加入已知商品（目录页场景，免一次查询）
func (s *CartService) AddItem(product *model.Product) error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}
	return state.AddCartItem(model.NewCartItem(product))
}

// RemoveItem 从购物车移除商品，不存在则静默
func (s *CartService) RemoveItem(productID string) error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}
	state.RemoveCartItem(productID)
	return nil
}

// SetQuantity 设置商品数量，数量<=0等价于移除
func (s *CartService) SetQuantity(productID string, qty int) error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}
	state.SetCartQuantity(productID, qty)
	return nil
}

// Items 购物车条目快照
func (s *CartService) Items() ([]model.CartItem, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}
	return state.Cart(), nil
}

// SubtotalCents 购物车小计（分）
func (s *CartService) SubtotalCents() (int64, error) {
	state, err := s.sessions.State()
	if err != nil {
		return 0, err
	}
	return state.SubtotalCents(), nil
}

// ItemCount 购物车商品总件数
func (s *CartService) ItemCount() (int, error) {
	state, err := s.sessions.State()
	if err != nil {
		return 0, err
	}
	return state.CartItemCount(), nil
}

// Clear 清空购物车
func (s *CartService) Clear() error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}
	state.ClearCart()
	return nil
}

// ==================== 收藏 ====================

// ToggleFavorite 切换收藏状态，返回切换后是否已收藏
// 先写远端再改本地，失败时本地不变
func (s *CartService) ToggleFavorite(ctx context.Context, productID string) (bool, error) {
	state, err := s.sessions.State()
	if err != nil {
		return false, err
	}

	ownerID := state.UserID()
	if state.IsFavorite(productID) {
		if err := s.favoriteRepo.Remove(ctx, ownerID, productID); err != nil {
			return true, WrapStoreError("favorite_sync", "取消收藏失败", err)
		}
		state.SetFavorite(productID, false)
		return false, nil
	}

	if err := s.favoriteRepo.Add(ctx, ownerID, productID); err != nil {
		return false, WrapStoreError("favorite_sync", "收藏失败", err)
	}
	state.SetFavorite(productID, true)
	return true, nil
}

// IsFavorite 商品是否已收藏
func (s *CartService) IsFavorite(productID string) (bool, error) {
	state, err := s.sessions.State()
	if err != nil {
		return false, err
	}
	return state.IsFavorite(productID), nil
}

// Totals 便捷转发：当前购物车合计（含积分折扣）
func (s *CartService) Totals() (session.Totals, error) {
	state, err := s.sessions.State()
	if err != nil {
		return session.Totals{}, err
	}
	return state.ComputeTotals(), nil
}
