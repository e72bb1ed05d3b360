package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/realtime"
	"depot_gas_v1_202608/internal/repository"
	"depot_gas_v1_202608/internal/service"
	"depot_gas_v1_202608/internal/task"
	"depot_gas_v1_202608/pkg/cache"
	"depot_gas_v1_202608/pkg/config"
	"depot_gas_v1_202608/pkg/database"
)

func main() {
	// 1. 加载环境配置
	config.LoadEnv()

	// 2. 初始化数据库
	db := initDatabase()

	// 3. 初始化依赖
	deps := initDependencies(db)

	// 4. 启动定时任务
	tm := initTasks(deps)

	// 5. 引擎常驻，等待退出信号
	waitForShutdown(deps, tm)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB    *gorm.DB
	Redis *cache.RedisClient
	Hub   *realtime.Hub
	Repos *Repositories

	Auth         *service.AuthService
	Session      *service.SessionService
	Cart         *service.CartService
	Loyalty      *service.LoyaltyService
	Checkout     *service.CheckoutService
	Address      *service.AddressService
	Notification *service.NotificationService
	Settings     *service.SettingsService
}

// Repositories 仓库集合
type Repositories struct {
	Depot        repository.DepotRepository
	Setting      repository.SettingRepository
	Product      repository.ProductRepository
	Profile      repository.ProfileRepository
	Address      repository.AddressRepository
	Order        repository.OrderRepository
	Loyalty      repository.LoyaltyRepository
	Notification repository.NotificationRepository
	Chat         repository.ChatRepository
	Favorite     repository.FavoriteRepository
	CheckoutUow  *repository.CheckoutUnitOfWork
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	return database.InitDB(
		config.DatabaseDSN(),
		// 用户
		&model.Profile{}, &model.Address{}, &model.Favorite{},
		// 气站与商品
		&model.Depot{}, &model.Product{}, &model.AppSetting{},
		// 订单
		&model.Order{}, &model.OrderItem{},
		// 忠诚度
		&model.LoyaltyProgram{},
		// 通知与聊天
		&model.Notification{}, &model.ChatMessage{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- 缓存（可选） --------
	var redisClient *cache.RedisClient
	if addr := config.RedisAddr(); addr != "" {
		var err error
		redisClient, err = cache.NewRedisClient(addr)
		if err != nil {
			log.Printf("警告: Redis 连接失败，商品目录缓存降级为直连数据库: %v", err)
			redisClient = nil
		}
	}

	// -------- Repo 层 --------
	repos := initRepositories(db, redisClient)

	// -------- 实时通道 --------
	hub := realtime.NewHub()

	// -------- 服务层 --------
	authSvc := service.NewAuthService(repos.Profile, service.DefaultJWTConfig(config.JWTSecret()))

	sessionSvc := service.NewSessionService(service.SessionDeps{
		Channel:          hub,
		ProfileRepo:      repos.Profile,
		DepotRepo:        repos.Depot,
		ProductRepo:      repos.Product,
		OrderRepo:        repos.Order,
		AddressRepo:      repos.Address,
		NotificationRepo: repos.Notification,
		ChatRepo:         repos.Chat,
		LoyaltyRepo:      repos.Loyalty,
		FavoriteRepo:     repos.Favorite,
	})
	sessionSvc.OnNotify = func(n model.Notification) {
		log.Printf("[Notify] %s: %s", n.Title, n.Message)
	}
	// 登录打开会话 / 登出关闭会话
	sessionSvc.BindAuth(authSvc)

	settingsSvc := service.NewSettingsService(repos.Setting, config.RemoteSettingsURL())

	return &Dependencies{
		DB:    db,
		Redis: redisClient,
		Hub:   hub,
		Repos: repos,

		Auth:         authSvc,
		Session:      sessionSvc,
		Cart:         service.NewCartService(sessionSvc, repos.Product, repos.Favorite),
		Loyalty:      service.NewLoyaltyService(sessionSvc, repos.Loyalty),
		Checkout:     service.NewCheckoutService(sessionSvc, authSvc, settingsSvc, repos.CheckoutUow),
		Address:      service.NewAddressService(sessionSvc, repos.Address, repos.Profile),
		Notification: service.NewNotificationService(sessionSvc, repos.Notification, repos.Chat),
		Settings:     settingsSvc,
	}
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB, redisClient *cache.RedisClient) *Repositories {
	return &Repositories{
		Depot:        repository.NewDepotRepository(db),
		Setting:      repository.NewSettingRepository(db),
		Product:      repository.NewProductRepository(db, redisClient),
		Profile:      repository.NewProfileRepository(db),
		Address:      repository.NewAddressRepository(db),
		Order:        repository.NewOrderRepository(db),
		Loyalty:      repository.NewLoyaltyRepository(db),
		Notification: repository.NewNotificationRepository(db),
		Chat:         repository.NewChatRepository(db),
		Favorite:     repository.NewFavoriteRepository(db),
		CheckoutUow:  repository.NewCheckoutUnitOfWork(db),
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) *task.TaskManager {
	tm := task.NewTaskManager(&task.TaskManagerDeps{
		OrderRepo:       deps.Repos.Order,
		Hub:             deps.Hub,
		SessionService:  deps.Session,
		SettingsService: deps.Settings,
	}, nil)
	tm.Start()
	return tm
}

// ==================== 生命周期 ====================

// waitForShutdown 等待退出信号并优雅关闭
func waitForShutdown(deps *Dependencies, tm *task.TaskManager) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭引擎...")

	tm.Stop()
	deps.Session.Close()
	if deps.Redis != nil {
		deps.Redis.Close()
	}

	log.Println("引擎已退出")
}
