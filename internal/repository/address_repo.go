package repository

import (
	"context"

	"depot_gas_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== AddressRepository 地址仓库 ====================

// AddressPatch 地址更新补丁，nil 字段表示不修改
type AddressPatch struct {
	Label     *string
	Address   *string
	IsDefault *bool
}

// AddressRepository 收货地址仓库接口
// 单默认不变式（同一 owner 最多一个 is_default=true）在此层事务内维护
type AddressRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.Address, error)
	GetByID(ctx context.Context, id string) (*model.Address, error)
	Create(ctx context.Context, address *model.Address) error
	Update(ctx context.Context, id string, patch AddressPatch) (*model.Address, error)
	Delete(ctx context.Context, id string) error
}

type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓库
func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

// ListByOwner 按创建时间倒序，便于"最新创建者胜出"的默认地址裁决
func (r *addressRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Address, error) {
	var addresses []model.Address
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&addresses).Error
	return addresses, err
}

func (r *addressRepository) GetByID(ctx context.Context, id string) (*model.Address, error) {
	var address model.Address
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// Create 插入地址；若标记默认或为该 owner 首个地址，事务内降级其余默认
func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Address{}).
			Where("owner_id = ?", address.OwnerID).
			Count(&count).Error; err != nil {
			return err
		}

		// 首个地址强制为默认
		if count == 0 {
			address.IsDefault = true
		}

		if address.IsDefault {
			if err := tx.Model(&model.Address{}).
				Where("owner_id = ? AND is_default = ?", address.OwnerID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}

		return tx.Create(address).Error
	})
}

// Update 应用补丁；补丁将 is_default 置真时，事务内降级同 owner 其余默认
func (r *addressRepository) Update(ctx context.Context, id string, patch AddressPatch) (*model.Address, error) {
	var updated model.Address
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address model.Address
		if err := tx.Where("id = ?", id).First(&address).Error; err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if patch.Label != nil {
			fields["label"] = *patch.Label
		}
		if patch.Address != nil {
			fields["address"] = *patch.Address
		}
		if patch.IsDefault != nil {
			fields["is_default"] = *patch.IsDefault
			if *patch.IsDefault {
				if err := tx.Model(&model.Address{}).
					Where("owner_id = ? AND id <> ? AND is_default = ?", address.OwnerID, id, true).
					Update("is_default", false).Error; err != nil {
					return err
				}
			}
		}

		if len(fields) > 0 {
			if err := tx.Model(&model.Address{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete 删除地址；若删除的是默认地址，事务内将最新创建的剩余地址提升为默认
func (r *addressRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address model.Address
		if err := tx.Where("id = ?", id).First(&address).Error; err != nil {
			return err
		}

		if err := tx.Delete(&model.Address{}, "id = ?", id).Error; err != nil {
			return err
		}

		if address.IsDefault {
			var next model.Address
			err := tx.Where("owner_id = ?", address.OwnerID).
				Order("created_at DESC").
				First(&next).Error
			if err == gorm.ErrRecordNotFound {
				return nil // 已无剩余地址
			}
			if err != nil {
				return err
			}
			return tx.Model(&model.Address{}).
				Where("id = ?", next.ID).
				Update("is_default", true).Error
		}

		return nil
	})
}
