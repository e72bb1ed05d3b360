package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"depot_gas_v1_202608/internal/model"
)

// ==================== 测试模型 ====================

// 测试用商品表（仅 Preload 需要，规避 text[] 列）
type testRewardProduct struct {
	ID         string `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	DepotID    string
	Name       string
	Brand      string
	PriceCents int64
}

func (testRewardProduct) TableName() string { return "products" }

// ==================== 测试辅助 ====================

func setupLoyaltyTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&testRewardProduct{}, &model.LoyaltyProgram{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	db.Create(&testRewardProduct{ID: "p1", DepotID: "d1", Name: "Botijão P13", PriceCents: 10000})
	return db
}

func seedProgram(t *testing.T, db *gorm.DB, status string) *model.LoyaltyProgram {
	t.Helper()
	program := &model.LoyaltyProgram{
		OwnerID:                  "u1",
		DepotID:                  "d1",
		TargetPurchases:          10,
		CurrentPurchases:         10,
		RewardProductID:          "p1",
		RewardDiscountPercentage: 20,
		Status:                   status,
	}
	if err := db.Create(program).Error; err != nil {
		t.Fatalf("插入测试计划失败: %v", err)
	}
	return program
}

// ==================== 单元测试 ====================

func TestLoyaltyRepo_Redeem(t *testing.T) {
	db := setupLoyaltyTestDB(t)
	repo := NewLoyaltyRepository(db)
	ctx := context.Background()

	program := seedProgram(t, db, model.LoyaltyStatusCompleted)

	next, err := repo.Redeem(ctx, program.ID, "order-1")
	if err != nil {
		t.Fatalf("Redeem() error = %v", err)
	}

	// 原计划翻转为 redeemed 并记录订单
	redeemed, err := repo.GetByID(ctx, program.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if redeemed.Status != model.LoyaltyStatusRedeemed {
		t.Errorf("Status = %s, want redeemed", redeemed.Status)
	}
	if redeemed.RedeemedOrderID != "order-1" {
		t.Errorf("RedeemedOrderID = %s, want order-1", redeemed.RedeemedOrderID)
	}
	if redeemed.RedeemedAt == nil {
		t.Error("RedeemedAt 应被记录")
	}

	// 新周期计划：同条款、计数清零、active
	if next.ID == "" || next.ID == program.ID {
		t.Errorf("新计划应有独立 ID, got %q", next.ID)
	}
	if next.Status != model.LoyaltyStatusActive {
		t.Errorf("新计划 Status = %s, want active", next.Status)
	}
	if next.CurrentPurchases != 0 {
		t.Errorf("新计划 CurrentPurchases = %d, want 0", next.CurrentPurchases)
	}
	if next.TargetPurchases != program.TargetPurchases ||
		next.RewardProductID != program.RewardProductID ||
		next.RewardDiscountPercentage != program.RewardDiscountPercentage {
		t.Errorf("新计划条款应与原计划一致, got %+v", next)
	}

	programs, err := repo.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(programs) != 2 {
		t.Errorf("计划总数 = %d, want 2", len(programs))
	}
}

func TestLoyaltyRepo_RedeemNotCompleted(t *testing.T) {
	db := setupLoyaltyTestDB(t)
	repo := NewLoyaltyRepository(db)
	ctx := context.Background()

	active := seedProgram(t, db, model.LoyaltyStatusActive)
	if _, err := repo.Redeem(ctx, active.ID, "order-1"); err != ErrProgramNotRedeemable {
		t.Errorf("兑换 active 计划应返回 ErrProgramNotRedeemable, got %v", err)
	}

	redeemed := seedProgram(t, db, model.LoyaltyStatusRedeemed)
	if _, err := repo.Redeem(ctx, redeemed.ID, "order-2"); err != ErrProgramNotRedeemable {
		t.Errorf("重复兑换应返回 ErrProgramNotRedeemable, got %v", err)
	}

	// 失败不产生新计划
	var count int64
	db.Model(&model.LoyaltyProgram{}).Count(&count)
	if count != 2 {
		t.Errorf("计划总数 = %d, want 2 (兑换失败不插入新计划)", count)
	}
}

func TestLoyaltyRepo_ListPreloadsReward(t *testing.T) {
	db := setupLoyaltyTestDB(t)
	repo := NewLoyaltyRepository(db)
	ctx := context.Background()

	seedProgram(t, db, model.LoyaltyStatusCompleted)

	programs, err := repo.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(programs) != 1 {
		t.Fatalf("计划数 = %d, want 1", len(programs))
	}
	if programs[0].RewardProduct == nil || programs[0].RewardProduct.Name != "Botijão P13" {
		t.Errorf("RewardProduct 应被预加载, got %+v", programs[0].RewardProduct)
	}
}
