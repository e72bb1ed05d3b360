package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"depot_gas_v1_202608/internal/service"
)

// ==================== SettingsRefreshTask 配置刷新任务 ====================

// SettingsRefreshTask 定时刷新运营配置
// 数据库配置每 10 分钟重载，远端配置每 30 分钟拉取
type SettingsRefreshTask struct {
	settings *service.SettingsService
	cron     *cron.Cron
}

// NewSettingsRefreshTask 创建配置刷新任务
func NewSettingsRefreshTask(settings *service.SettingsService) *SettingsRefreshTask {
	return &SettingsRefreshTask{
		settings: settings,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *SettingsRefreshTask) Start() {
	// 首次执行（延迟 10 秒，等待依赖就绪）
	go func() {
		time.Sleep(10 * time.Second)
		t.refresh(true)
	}()

	// 数据库配置重载：每 10 分钟
	_, _ = t.cron.AddFunc("0 */10 * * * *", func() {
		t.refresh(false)
	})

	// 远端配置拉取：每 30 分钟
	_, _ = t.cron.AddFunc("0 */30 * * * *", func() {
		t.refresh(true)
	})

	t.cron.Start()
	log.Println("[SettingsRefreshTask] 已启动 (本地每10分钟/远端每30分钟)")
}

// Stop 停止任务
func (t *SettingsRefreshTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[SettingsRefreshTask] 已停止")
}

// RefreshNow 立即刷新一次（含远端）
func (t *SettingsRefreshTask) RefreshNow() {
	go t.refresh(true)
}

func (t *SettingsRefreshTask) refresh(remote bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := t.settings.Load(ctx); err != nil {
		log.Printf("[SettingsRefreshTask] 重载本地配置失败: %v", err)
	}
	if remote {
		if err := t.settings.RefreshRemote(ctx); err != nil {
			log.Printf("[SettingsRefreshTask] 拉取远端配置失败: %v", err)
		}
	}
}
