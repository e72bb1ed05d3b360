package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"depot_gas_v1_202608/internal/service"
)

// ==================== SessionReloadTask 会话对账任务 ====================

// SessionReloadTask 定时从持久层重拉服务端权威数据
// 实时通道可能丢事件（订阅满载丢弃/断连重连），周期对账兜底保证最终一致
type SessionReloadTask struct {
	sessions *service.SessionService
	cron     *cron.Cron
}

// NewSessionReloadTask 创建会话对账任务
func NewSessionReloadTask(sessions *service.SessionService) *SessionReloadTask {
	return &SessionReloadTask{
		sessions: sessions,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *SessionReloadTask) Start() {
	// 对账：每 5 分钟
	_, _ = t.cron.AddFunc("0 */5 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		t.reload(ctx)
	})

	t.cron.Start()
	log.Println("[SessionReloadTask] 已启动 (每5分钟对账)")
}

// Stop 停止任务
func (t *SessionReloadTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[SessionReloadTask] 已停止")
}

// ReloadNow 立即对账一次
func (t *SessionReloadTask) ReloadNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		t.reload(ctx)
	}()
}

func (t *SessionReloadTask) reload(ctx context.Context) {
	err := t.sessions.Reload(ctx)
	if err == service.ErrNotAuthenticated {
		// 无活动会话，无需对账
		return
	}
	if err != nil {
		log.Printf("[SessionReloadTask] 对账失败: %v", err)
		return
	}
	log.Println("[SessionReloadTask] 对账完成")
}
