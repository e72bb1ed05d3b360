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

func setupAddressTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.Address{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func TestAddressRepo_FirstAddressForcedDefault(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewAddressRepository(db)
	ctx := context.Background()

	a := &model.Address{OwnerID: "u1", Label: "Casa", Address: "Rua A, 100", IsDefault: false}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !a.IsDefault {
		t.Error("首个地址应被强制为默认")
	}
}

func TestAddressRepo_SingleDefaultInvariant(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewAddressRepository(db)
	ctx := context.Background()

	a1 := &model.Address{OwnerID: "u1", Label: "Casa", Address: "Rua A, 100"}
	repo.Create(ctx, a1)
	a2 := &model.Address{OwnerID: "u1", Label: "Trabalho", Address: "Av. B, 200", IsDefault: true}
	if err := repo.Create(ctx, a2); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	assertSingleDefault(t, db, "u1", a2.ID)

	// 更新另一条为默认，原默认被降级
	isDefault := true
	if _, err := repo.Update(ctx, a1.ID, AddressPatch{IsDefault: &isDefault}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	assertSingleDefault(t, db, "u1", a1.ID)
}

func TestAddressRepo_DeleteDefaultPromotesNewest(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewAddressRepository(db)
	ctx := context.Background()

	a1 := &model.Address{OwnerID: "u1", Label: "Casa", Address: "Rua A, 100"}
	repo.Create(ctx, a1)
	time.Sleep(10 * time.Millisecond) // created_at 需可区分先后
	a2 := &model.Address{OwnerID: "u1", Label: "Trabalho", Address: "Av. B, 200"}
	repo.Create(ctx, a2)
	time.Sleep(10 * time.Millisecond)
	a3 := &model.Address{OwnerID: "u1", Label: "Sítio", Address: "Estrada C, 300", IsDefault: true}
	repo.Create(ctx, a3)

	if err := repo.Delete(ctx, a3.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// 最新创建的剩余地址 a2 接任默认
	assertSingleDefault(t, db, "u1", a2.ID)
}

func TestAddressRepo_DeleteNonDefaultKeepsDefault(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewAddressRepository(db)
	ctx := context.Background()

	a1 := &model.Address{OwnerID: "u1", Label: "Casa", Address: "Rua A, 100"}
	repo.Create(ctx, a1)
	a2 := &model.Address{OwnerID: "u1", Label: "Trabalho", Address: "Av. B, 200"}
	repo.Create(ctx, a2)

	if err := repo.Delete(ctx, a2.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertSingleDefault(t, db, "u1", a1.ID)
}

func TestAddressRepo_ListByOwnerNewestFirst(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewAddressRepository(db)
	ctx := context.Background()

	a1 := &model.Address{OwnerID: "u1", Label: "Casa", Address: "Rua A, 100"}
	repo.Create(ctx, a1)
	time.Sleep(10 * time.Millisecond)
	a2 := &model.Address{OwnerID: "u1", Label: "Trabalho", Address: "Av. B, 200"}
	repo.Create(ctx, a2)

	// 其他用户的数据不可见
	other := &model.Address{OwnerID: "u2", Label: "Casa", Address: "Rua X, 1"}
	repo.Create(ctx, other)

	list, err := repo.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("地址数 = %d, want 2", len(list))
	}
	if list[0].ID != a2.ID {
		t.Errorf("应按创建时间倒序, 首个 = %s, want %s", list[0].ID, a2.ID)
	}
}

// assertSingleDefault 校验单默认不变式且默认者为期望地址
func assertSingleDefault(t *testing.T, db *gorm.DB, ownerID, wantID string) {
	t.Helper()

	var defaults []model.Address
	if err := db.Where("owner_id = ? AND is_default = ?", ownerID, true).Find(&defaults).Error; err != nil {
		t.Fatalf("查询默认地址失败: %v", err)
	}
	if len(defaults) != 1 {
		t.Fatalf("默认地址数 = %d, want 1", len(defaults))
	}
	if defaults[0].ID != wantID {
		t.Errorf("默认地址 = %s, want %s", defaults[0].ID, wantID)
	}
}
