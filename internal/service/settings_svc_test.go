package service

import (
	"context"
	"testing"

	"depot_gas_v1_202608/internal/model"
)

func TestSettings_Defaults(t *testing.T) {
	e := setupEngine(t)

	if got := e.settings.FreeShippingThresholdCents(); got != 8000 {
		t.Errorf("FreeShippingThresholdCents = %d, want 8000", got)
	}
	if got := e.settings.DeliveryFeeCents(); got != 800 {
		t.Errorf("DeliveryFeeCents = %d, want 800", got)
	}
	if got := e.settings.PromoBanner(); got == "" {
		t.Error("PromoBanner 应有默认文案")
	}
}

func TestSettings_DatabaseOverlay(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()

	if err := e.settings.Set(ctx, model.SettingFreeShippingThreshold, "100"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := e.settings.Set(ctx, model.SettingDeliveryFee, "12.50"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got := e.settings.FreeShippingThresholdCents(); got != 10000 {
		t.Errorf("覆盖后门槛 = %d, want 10000", got)
	}
	if got := e.settings.DeliveryFeeCents(); got != 1250 {
		t.Errorf("覆盖后配送费 = %d, want 1250", got)
	}

	// 新实例从数据库重新装载
	fresh := NewSettingsService(e.repos.setting, "")
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := fresh.FreeShippingThresholdCents(); got != 10000 {
		t.Errorf("重载后门槛 = %d, want 10000", got)
	}
}

func TestSettings_InvalidValueFallsBack(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()

	e.settings.Set(ctx, model.SettingDeliveryFee, "grátis")
	if got := e.settings.DeliveryFeeCents(); got != 800 {
		t.Errorf("非法配置应回退默认值, got %d", got)
	}

	e.settings.Set(ctx, model.SettingDeliveryFee, "-5")
	if got := e.settings.DeliveryFeeCents(); got != 800 {
		t.Errorf("负数配置应回退默认值, got %d", got)
	}
}

func TestSettings_DeliveryFeeFor(t *testing.T) {
	e := setupEngine(t)

	cases := []struct {
		totalCents int64
		wantFee    int64
	}{
		{7999, 800},
		{8000, 0},
		{8001, 0},
		{0, 800},
	}
	for _, tc := range cases {
		if got := e.settings.DeliveryFeeFor(tc.totalCents); got != tc.wantFee {
			t.Errorf("DeliveryFeeFor(%d) = %d, want %d", tc.totalCents, got, tc.wantFee)
		}
	}
}
