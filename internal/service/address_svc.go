package service

import (
	"context"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/repository"
)

// ==================== AddressService ====================

// AddressService 收货地址管理
// 远端写入成功后整体刷新本地列表，单默认不变式由仓储层事务保证
type AddressService struct {
	sessions    *SessionService
	addressRepo repository.AddressRepository
	profileRepo repository.ProfileRepository
}

func NewAddressService(sessions *SessionService, addressRepo repository.AddressRepository, profileRepo repository.ProfileRepository) *AddressService {
	return &AddressService{
		sessions:    sessions,
		addressRepo: addressRepo,
		profileRepo: profileRepo,
	}
}

// Add 新增地址
// 首个地址强制为默认；新地址为默认或首个时自动选中
func (s *AddressService) Add(ctx context.Context, label, address string, isDefault bool) (*model.Address, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}

	created := &model.Address{
		OwnerID:   state.UserID(),
		Label:     label,
		Address:   address,
		IsDefault: isDefault,
	}
	if err := s.addressRepo.Create(ctx, created); err != nil {
		return nil, WrapStoreError("address_save", "保存地址失败", err)
	}

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	if created.IsDefault {
		_ = state.SelectAddress(created.ID)
	}
	return created, nil
}

// Update 修改地址
// 修改为默认或修改的是当前选中地址时重新选中该地址
func (s *AddressService) Update(ctx context.Context, id string, patch repository.AddressPatch) (*model.Address, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}

	selected := state.SelectedAddress()

	updated, err := s.addressRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, WrapStoreError("address_save", "更新地址失败", err)
	}

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	becameDefault := patch.IsDefault != nil && *patch.IsDefault
	wasSelected := selected != nil && selected.ID == id
	if becameDefault || wasSelected {
		_ = state.SelectAddress(id)
	}
	return updated, nil
}

// Delete 删除地址
// 删除的是选中地址时选择降级为默认地址 → 列表首个 → 无
func (s *AddressService) Delete(ctx context.Context, id string) error {
	if _, err := s.sessions.State(); err != nil {
		return err
	}

	if err := s.addressRepo.Delete(ctx, id); err != nil {
		return WrapStoreError("address_delete", "删除地址失败", err)
	}

	return s.refresh(ctx)
}

// Select 选择已有地址为本单收货地址，纯本地操作
func (s *AddressService) Select(id string) error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}
	return state.SelectAddress(id)
}

// List 地址列表
func (s *AddressService) List() ([]model.Address, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}
	return state.Addresses(), nil
}

// Selected 当前选中地址
func (s *AddressService) Selected() (*model.Address, error) {
	state, err := s.sessions.State()
	if err != nil {
		return nil, err
	}
	return state.SelectedAddress(), nil
}

// UpdateDisplayName 修改展示名，先写远端再同步本地资料
func (s *AddressService) UpdateDisplayName(ctx context.Context, fullName string) error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}

	if err := s.profileRepo.UpdateDisplayName(ctx, state.UserID(), fullName); err != nil {
		return WrapStoreError("profile_save", "更新用户名失败", err)
	}

	profile := state.Profile()
	profile.FullName = fullName
	state.SetProfile(profile)
	return nil
}

func (s *AddressService) refresh(ctx context.Context) error {
	state, err := s.sessions.State()
	if err != nil {
		return err
	}
	addresses, err := s.addressRepo.ListByOwner(ctx, state.UserID())
	if err != nil {
		return WrapStoreError("address_load", "刷新地址失败", err)
	}
	state.SetAddresses(addresses)
	return nil
}
