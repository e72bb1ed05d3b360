package repository

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/pkg/cache"

	"gorm.io/gorm"
)

// 目录缓存 TTL
const productCacheTTL = 5 * time.Minute

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	DepotID  string
	Brand    string
	Featured *bool
	Keyword  string
}

// ==================== ProductRepository 商品仓库 ====================

// ProductRepository 商品仓库接口
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*model.Product, error)
	ListByDepot(ctx context.Context, depotID string) ([]model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)
}

type productRepository struct {
	db    *gorm.DB
	cache *cache.RedisClient // 可选，nil 时直接走库
}

// NewProductRepository 创建商品仓库
// redisClient 可为 nil，此时禁用目录缓存
func NewProductRepository(db *gorm.DB, redisClient *cache.RedisClient) ProductRepository {
	return &productRepository{db: db, cache: redisClient}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByDepot 获取气站全部商品目录，带 Redis 缓存
func (r *productRepository) ListByDepot(ctx context.Context, depotID string) ([]model.Product, error) {
	cacheKey := "depot:products:" + depotID

	// 先查缓存
	if r.cache != nil {
		if raw, ok := r.cache.Get(ctx, cacheKey); ok {
			var products []model.Product
			if err := json.Unmarshal([]byte(raw), &products); err == nil {
				return products, nil
			}
			// 缓存损坏则穿透回库
		}
	}

	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("depot_id = ?", depotID).
		Order("featured DESC, name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	// 回填缓存，失败不影响主流程
	if r.cache != nil {
		if raw, err := json.Marshal(products); err == nil {
			if err := r.cache.Set(ctx, cacheKey, string(raw), productCacheTTL); err != nil {
				log.Printf("[ProductRepo] 缓存回填失败: %v", err)
			}
		}
	}

	return products, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	db := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.DepotID != "" {
		db = db.Where("depot_id = ?", filter.DepotID)
	}
	if filter.Brand != "" {
		db = db.Where("brand = ?", filter.Brand)
	}
	if filter.Featured != nil {
		db = db.Where("featured = ?", *filter.Featured)
	}
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		db = db.Where("name LIKE ? OR brand LIKE ?", keyword, keyword)
	}

	var products []model.Product
	err := db.Order("featured DESC, name ASC").Find(&products).Error
	return products, err
}
