package service

import (
	"context"
	"testing"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/session"
)

func TestLoyalty_EligibleRewards(t *testing.T) {
	e := setupEngine(t)
	e.seedDepot(t, "d1")
	e.seedProduct(t, "p1", "d1", 10000)
	e.seedProduct(t, "p2", "d1", 9000)
	e.seedUser(t, "u1", "joao@example.com")
	ctx := context.Background()

	done := e.seedCompletedProgram(t, "u1", "d1", "p1", 20)
	e.seedCompletedProgram(t, "u1", "d1", "p2", 10) // 商品不在车中

	e.cart.AddProduct(ctx, "p1")

	eligible, err := e.loyalty.EligibleRewards()
	if err != nil {
		t.Fatalf("EligibleRewards() error = %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != done.ID {
		t.Errorf("可用奖励应仅含车中商品的计划, got %d 个", len(eligible))
	}
}

func TestLoyalty_ApplyRequiresEligibility(t *testing.T) {
	e := setupEngine(t)
	e.seedDepot(t, "d1")
	e.seedProduct(t, "p1", "d1", 10000)
	e.seedUser(t, "u1", "joao@example.com")

	program := e.seedCompletedProgram(t, "u1", "d1", "p1", 20)

	// 商品不在购物车中
	if err := e.loyalty.Apply(program.ID); err != ErrRewardNotEligible {
		t.Errorf("Apply() error = %v, want ErrRewardNotEligible", err)
	}

	e.cart.AddProduct(context.Background(), "p1")
	if err := e.loyalty.Apply(program.ID); err != nil {
		t.Errorf("商品入车后应可应用, got %v", err)
	}
}

func TestLoyalty_SingleRewardPerOrder(t *testing.T) {
	e := setupEngine(t)
	e.seedDepot(t, "d1")
	e.seedProduct(t, "p1", "d1", 10000)
	e.seedProduct(t, "p2", "d1", 9000)
	e.seedUser(t, "u1", "joao@example.com")
	ctx := context.Background()

	lp1 := e.seedCompletedProgram(t, "u1", "d1", "p1", 20)
	lp2 := e.seedCompletedProgram(t, "u1", "d1", "p2", 10)

	e.cart.AddProduct(ctx, "p1")
	e.cart.AddProduct(ctx, "p2")

	if err := e.loyalty.Apply(lp1.ID); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := e.loyalty.Apply(lp2.ID); err != session.ErrAlreadyApplied {
		t.Errorf("第二个计划应被拒, got %v", err)
	}

	// 取消后可换
	if err := e.loyalty.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := e.loyalty.Apply(lp2.ID); err != nil {
		t.Errorf("取消后换计划应成功, got %v", err)
	}
}

func TestLoyalty_ActiveProgramNotEligible(t *testing.T) {
	e := setupEngine(t)
	e.seedDepot(t, "d1")
	e.seedProduct(t, "p1", "d1", 10000)
	e.seedUser(t, "u1", "joao@example.com")
	ctx := context.Background()

	program := &model.LoyaltyProgram{
		OwnerID: "u1", DepotID: "d1",
		TargetPurchases: 10, CurrentPurchases: 3,
		RewardProductID: "p1", RewardDiscountPercentage: 20,
		Status: model.LoyaltyStatusActive,
	}
	if err := e.db.Create(program).Error; err != nil {
		t.Fatalf("插入计划失败: %v", err)
	}
	e.loyalty.Refresh(ctx)
	e.cart.AddProduct(ctx, "p1")

	if err := e.loyalty.Apply(program.ID); err != ErrRewardNotEligible {
		t.Errorf("未达标计划应不可应用, got %v", err)
	}
}
