package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/repository"
	"depot_gas_v1_202608/pkg/utils"
)

// ==================== 默认配置 ====================

// 金额配置以"元"为单位存储，内部统一换算为分
const (
	defaultFreeShippingThresholdCents = 8000 // 80.00 免运费门槛
	defaultDeliveryFeeCents           = 800  // 8.00 固定配送费
	defaultPromoBanner                = "Frete grátis hoje!"

	remoteSettingsCacheTTL = 5 * time.Minute
)

// ==================== SettingsService ====================

// SettingsService 运营配置
// 三层取值：内置默认 → 数据库覆盖 → 远端配置接口覆盖
type SettingsService struct {
	settingRepo repository.SettingRepository
	client      *resty.Client
	remoteURL   string

	mu     sync.RWMutex
	values map[string]string
}

func NewSettingsService(settingRepo repository.SettingRepository, remoteURL string) *SettingsService {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second)

	return &SettingsService{
		settingRepo: settingRepo,
		client:      client,
		remoteURL:   remoteURL,
		values:      make(map[string]string),
	}
}

// Load 从数据库装载全部配置
func (s *SettingsService) Load(ctx context.Context) error {
	all, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		return WrapStoreError("settings_load", "装载配置失败", err)
	}

	s.mu.Lock()
	for k, v := range all {
		s.values[k] = v
	}
	s.mu.Unlock()
	return nil
}

// RefreshRemote 拉取远端配置并合并覆盖本地
// 带内存缓存，TTL 内不重复请求；未配置远端地址时为空操作
func (s *SettingsService) RefreshRemote(ctx context.Context) error {
	if s.remoteURL == "" {
		return nil
	}

	body, ok := utils.GetCache(s.remoteURL)
	if !ok {
		resp, err := s.client.R().SetContext(ctx).Get(s.remoteURL)
		if err != nil {
			return WrapStoreError("settings_remote", "远端配置请求失败", err)
		}
		if resp.StatusCode() != 200 {
			return WrapStoreError("settings_remote",
				fmt.Sprintf("远端配置返回异常状态: %d", resp.StatusCode()), nil)
		}
		body = resp.String()
		utils.SetCache(s.remoteURL, body, remoteSettingsCacheTTL)
	}

	var remote map[string]string
	if err := json.Unmarshal([]byte(body), &remote); err != nil {
		return WrapStoreError("settings_remote", "远端配置解析失败", err)
	}

	s.mu.Lock()
	for k, v := range remote {
		s.values[k] = v
	}
	s.mu.Unlock()

	log.Printf("[Settings] 远端配置已刷新: %d 项", len(remote))
	return nil
}

// Get 取原始配置值，不存在返回空串
func (s *SettingsService) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set 写配置，同时更新数据库和内存
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	if err := s.settingRepo.Set(ctx, key, value); err != nil {
		return WrapStoreError("settings_save", "保存配置失败", err)
	}

	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// FreeShippingThresholdCents 免运费门槛（分）
func (s *SettingsService) FreeShippingThresholdCents() int64 {
	return s.centsValue(model.SettingFreeShippingThreshold, defaultFreeShippingThresholdCents)
}

// DeliveryFeeCents 固定配送费（分）
func (s *SettingsService) DeliveryFeeCents() int64 {
	return s.centsValue(model.SettingDeliveryFee, defaultDeliveryFeeCents)
}

// PromoBanner 首页促销横幅文案
func (s *SettingsService) PromoBanner() string {
	if v := s.Get(model.SettingPromoBanner); v != "" {
		return v
	}
	return defaultPromoBanner
}

// DeliveryFeeFor 给定商品合计的配送费：达到门槛免运费，否则收固定费
func (s *SettingsService) DeliveryFeeFor(totalCents int64) int64 {
	if totalCents >= s.FreeShippingThresholdCents() {
		return 0
	}
	return s.DeliveryFeeCents()
}

func (s *SettingsService) centsValue(key string, fallback int64) int64 {
	raw := s.Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		log.Printf("[Settings] 配置值非法: %s=%q，使用默认值", key, raw)
		return fallback
	}
	return int64(math.Round(v * 100))
}
