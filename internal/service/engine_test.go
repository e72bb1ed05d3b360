package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/realtime"
	"depot_gas_v1_202608/internal/repository"
)

// ==================== 测试模型 ====================

// 测试用商品表（规避 text[] 列，sqlite 无法迁移）
type testProduct struct {
	ID         string `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	DepotID    string
	Name       string
	Brand      string
	ImageURL   string
	PriceCents int64
	Featured   bool
}

func (testProduct) TableName() string { return "products" }

// ==================== 测试环境 ====================

// engine 一套完整接线的会话引擎测试环境
type engine struct {
	db    *gorm.DB
	hub   *realtime.Hub
	repos struct {
		order   repository.OrderRepository
		loyalty repository.LoyaltyRepository
		notif   repository.NotificationRepository
		addr    repository.AddressRepository
		profile repository.ProfileRepository
		setting repository.SettingRepository
	}

	auth         *AuthService
	session      *SessionService
	cart         *CartService
	loyalty      *LoyaltyService
	checkout     *CheckoutService
	address      *AddressService
	notification *NotificationService
	settings     *SettingsService
}

func setupEngine(t *testing.T) *engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&testProduct{},
		&model.Profile{}, &model.Address{}, &model.Favorite{},
		&model.Depot{}, &model.AppSetting{},
		&model.Order{}, &model.OrderItem{},
		&model.LoyaltyProgram{},
		&model.Notification{}, &model.ChatMessage{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	e := &engine{db: db, hub: realtime.NewHub()}

	depotRepo := repository.NewDepotRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	productRepo := repository.NewProductRepository(db, nil)
	profileRepo := repository.NewProfileRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	e.repos.order = orderRepo
	e.repos.loyalty = loyaltyRepo
	e.repos.notif = notifRepo
	e.repos.addr = addressRepo
	e.repos.profile = profileRepo
	e.repos.setting = settingRepo

	e.auth = NewAuthService(profileRepo, DefaultJWTConfig("test-secret"))
	e.session = NewSessionService(SessionDeps{
		Channel:          e.hub,
		ProfileRepo:      profileRepo,
		DepotRepo:        depotRepo,
		ProductRepo:      productRepo,
		OrderRepo:        orderRepo,
		AddressRepo:      addressRepo,
		NotificationRepo: notifRepo,
		ChatRepo:         chatRepo,
		LoyaltyRepo:      loyaltyRepo,
		FavoriteRepo:     favoriteRepo,
	})
	e.session.BindAuth(e.auth)

	e.settings = NewSettingsService(settingRepo, "")
	e.cart = NewCartService(e.session, productRepo, favoriteRepo)
	e.loyalty = NewLoyaltyService(e.session, loyaltyRepo)
	e.checkout = NewCheckoutService(e.session, e.auth, e.settings, repository.NewCheckoutUnitOfWork(db))
	e.address = NewAddressService(e.session, addressRepo, profileRepo)
	e.notification = NewNotificationService(e.session, notifRepo, chatRepo)

	t.Cleanup(e.session.Close)
	return e
}

// seedUser 创建用户档案并登录打开会话
func (e *engine) seedUser(t *testing.T, userID, email string) {
	t.Helper()

	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("密码哈希失败: %v", err)
	}
	profile := &model.Profile{
		UserID:       userID,
		Email:        email,
		PasswordHash: hash,
		FullName:     "João Silva",
		Role:         model.RoleCustomer,
	}
	if err := e.db.Create(profile).Error; err != nil {
		t.Fatalf("插入用户失败: %v", err)
	}

	// 登录事件驱动会话打开
	if _, err := e.auth.SignIn(context.Background(), email, "secret123"); err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if _, err := e.session.State(); err != nil {
		t.Fatalf("登录后会话应已打开: %v", err)
	}
}

// seedDepot 创建营业中的气站
func (e *engine) seedDepot(t *testing.T, id string) {
	t.Helper()
	depot := &model.Depot{Name: "Depósito Central", City: "São Paulo", Status: model.DepotStatusActive}
	depot.ID = id
	if err := e.db.Create(depot).Error; err != nil {
		t.Fatalf("插入气站失败: %v", err)
	}
}

// seedProduct 创建商品
func (e *engine) seedProduct(t *testing.T, id, depotID string, priceCents int64) {
	t.Helper()
	p := &testProduct{ID: id, DepotID: depotID, Name: "Botijão P13", Brand: "Ultragaz", PriceCents: priceCents}
	if err := e.db.Create(p).Error; err != nil {
		t.Fatalf("插入商品失败: %v", err)
	}
}

// seedCompletedProgram 创建已达标的忠诚度计划并刷新会话
func (e *engine) seedCompletedProgram(t *testing.T, userID, depotID, rewardProductID string, pct int) *model.LoyaltyProgram {
	t.Helper()
	program := &model.LoyaltyProgram{
		OwnerID:                  userID,
		DepotID:                  depotID,
		TargetPurchases:          10,
		CurrentPurchases:         10,
		RewardProductID:          rewardProductID,
		RewardDiscountPercentage: pct,
		Status:                   model.LoyaltyStatusCompleted,
	}
	if err := e.db.Create(program).Error; err != nil {
		t.Fatalf("插入计划失败: %v", err)
	}
	if err := e.loyalty.Refresh(context.Background()); err != nil {
		t.Fatalf("刷新计划失败: %v", err)
	}
	return program
}

// seedAddress 通过地址服务创建地址
func (e *engine) seedAddress(t *testing.T, label string, isDefault bool) *model.Address {
	t.Helper()
	a, err := e.address.Add(context.Background(), label, "Rua A, 100", isDefault)
	if err != nil {
		t.Fatalf("创建地址失败: %v", err)
	}
	return a
}
