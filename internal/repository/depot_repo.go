package repository

import (
	"context"

	"depot_gas_v1_202608/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== DepotRepository 气站仓库 ====================

// DepotRepository 气站仓库接口
type DepotRepository interface {
	GetByID(ctx context.Context, id string) (*model.Depot, error)
	ListActive(ctx context.Context) ([]model.Depot, error)
}

type depotRepository struct {
	db *gorm.DB
}

// NewDepotRepository 创建气站仓库
func NewDepotRepository(db *gorm.DB) DepotRepository {
	return &depotRepository{db: db}
}

func (r *depotRepository) GetByID(ctx context.Context, id string) (*model.Depot, error) {
	var depot model.Depot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&depot).Error
	if err != nil {
		return nil, err
	}
	return &depot, nil
}

func (r *depotRepository) ListActive(ctx context.Context) ([]model.Depot, error) {
	var depots []model.Depot
	err := r.db.WithContext(ctx).
		Where("status = ?", model.DepotStatusActive).
		Order("name ASC").
		Find(&depots).Error
	return depots, err
}

// ==================== SettingRepository 配置仓库 ====================

// SettingRepository 键值配置仓库接口
type SettingRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建配置仓库
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) GetAll(ctx context.Context) (map[string]string, error) {
	var rows []model.AppSetting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	var row model.AppSetting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		return "", err
	}
	return row.Value, nil
}

func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	row := model.AppSetting{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}
