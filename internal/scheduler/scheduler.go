package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"capstone/internal/pkg/config"
	"capstone/internal/service"
)

const jobInvitationSweep = "invitation_sweep"

// Scheduler 调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	invitations   service.InvitationService
	cronSchedules map[string]cron.EntryID // 存储任务ID，便于管理
}

// NewScheduler 创建调度器
func NewScheduler(invitations service.InvitationService, logger *zap.Logger) *Scheduler {
	// 创建 cron 实例（带秒级支持）
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:          c,
		logger:        logger,
		invitations:   invitations,
		cronSchedules: make(map[string]cron.EntryID),
	}
}

// Start 注册任务并启动调度器
func (s *Scheduler) Start(cfg *config.SchedulerConfig) error {
	log := s.logger.Sugar()

	log.Info("启动定时任务调度器...")

	// cron 表达式格式: 秒 分 时 日 月 周
	cronExpr := cfg.InvitationSweep
	if cronExpr == "" {
		cronExpr = "0 0 * * * *" // 默认: 每小时整点
		log.Warn("未配置scheduler.invitation_sweep，使用默认值", zap.String("cron", cronExpr))
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		if _, err := s.SweepInvitations(); err != nil {
			log.Errorf("过期邀请清理任务执行失败: %v", err)
		}
	})
	if err != nil {
		log.Errorf("注册过期邀请清理任务: %v 失败: %v", cronExpr, err)
		return err
	}

	s.cronSchedules[jobInvitationSweep] = entryID
	log.Infof("过期邀请清理任务已注册: %s entry_id=%d", cronExpr, entryID)

	// 启动 cron
	s.cron.Start()
	log.Info("定时任务调度器启动成功")

	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	// 停止 cron（等待正在执行的任务完成）
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("定时任务调度器已停止")
}

// SweepInvitations 清理过期邀请, 也用于手动触发
func (s *Scheduler) SweepInvitations() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return s.invitations.PurgeExpired(ctx)
}

// Entries 已注册的任务
func (s *Scheduler) Entries() map[string]cron.EntryID {
	return s.cronSchedules
}
