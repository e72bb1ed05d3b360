package task

import (
	"context"
	"log"
	"time"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/realtime"
	"depot_gas_v1_202608/internal/repository"
	"depot_gas_v1_202608/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台任务
// 管理范围：会话对账、配置刷新、配送推进
type TaskManager struct {
	reloadTask   *SessionReloadTask
	settingsTask *SettingsRefreshTask
	dispatchTask *DispatchTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	OrderRepo repository.OrderRepository
	Hub       *realtime.Hub

	SessionService  *service.SessionService
	SettingsService *service.SettingsService
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	ReloadEnabled   bool
	SettingsEnabled bool

	DispatchEnabled    bool
	DispatchPreparing  time.Duration
	DispatchDelivering time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		ReloadEnabled:   true,
		SettingsEnabled: true,

		DispatchEnabled:    true,
		DispatchPreparing:  10 * time.Minute,
		DispatchDelivering: 35 * time.Minute,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	if cfg.ReloadEnabled && deps.SessionService != nil {
		tm.reloadTask = NewSessionReloadTask(deps.SessionService)
	}

	if cfg.SettingsEnabled && deps.SettingsService != nil {
		tm.settingsTask = NewSettingsRefreshTask(deps.SettingsService)
	}

	if cfg.DispatchEnabled && deps.OrderRepo != nil && deps.Hub != nil {
		tm.dispatchTask = NewDispatchTask(deps.OrderRepo, deps.Hub)
		tm.dispatchTask.SetDurations(cfg.DispatchPreparing, cfg.DispatchDelivering)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动后台任务...")

	if tm.reloadTask != nil {
		tm.reloadTask.Start()
	}
	if tm.settingsTask != nil {
		tm.settingsTask.Start()
	}
	if tm.dispatchTask != nil {
		tm.dispatchTask.Start()
	}

	log.Println("[TaskManager] 后台任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台任务...")

	if tm.reloadTask != nil {
		tm.reloadTask.Stop()
	}
	if tm.settingsTask != nil {
		tm.settingsTask.Stop()
	}
	if tm.dispatchTask != nil {
		tm.dispatchTask.Stop()
	}

	log.Println("[TaskManager] 后台任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerReload 触发会话对账
func (tm *TaskManager) TriggerReload() {
	if tm.reloadTask != nil {
		tm.reloadTask.ReloadNow()
	}
}

// TriggerSettingsRefresh 触发配置刷新
func (tm *TaskManager) TriggerSettingsRefresh() {
	if tm.settingsTask != nil {
		tm.settingsTask.RefreshNow()
	}
}

// TriggerDispatch 触发一轮配送推进检查
func (tm *TaskManager) TriggerDispatch() {
	if tm.dispatchTask != nil {
		tm.dispatchTask.AdvanceNow()
	}
}

// AdvanceOrder 手动推进单个订单（管理操作）
func (tm *TaskManager) AdvanceOrder(ctx context.Context, orderID string, status model.OrderStatus) error {
	if tm.dispatchTask == nil {
		return ErrTaskDisabled
	}
	return tm.dispatchTask.AdvanceOrder(ctx, orderID, status)
}

// ==================== 状态查询 ====================

// Status 获取任务启用状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"reload":   tm.reloadTask != nil,
		"settings": tm.settingsTask != nil,
		"dispatch": tm.dispatchTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
