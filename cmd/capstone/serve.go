package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"capstone/internal/adapter/notification"
	"capstone/internal/api/router"
	"capstone/internal/pkg/config"
	"capstone/internal/pkg/database"
	"capstone/internal/pkg/jwt"
	"capstone/internal/pkg/logger"
	"capstone/internal/scheduler"
	"capstone/internal/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Close()
			}()
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	logger.Info(fmt.Sprintf("服务 %s 启动中...", appName), zap.String("version", appVersion))

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("初始化数据库失败: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()
	db := database.GetDB()
	logger.Info(fmt.Sprintf("数据库连接成功 %s %s:%v", cfg.Database.Driver, cfg.Database.Host, cfg.Database.Port),
		zap.String("database", cfg.Database.Database))

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		logger.Info("数据库表结构已迁移")
	}

	// 通知投递
	var rdb redis.UniversalClient
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			_ = rdb.Close()
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis 连接失败, 通知将只写入收件箱", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
	}
	notifier, err := notification.NewNotifier(&cfg.Notification, rdb, logger.Log)
	if err != nil {
		return fmt.Errorf("初始化通知失败: %w", err)
	}

	services := service.NewServices(db, notifier, service.OptionsFromConfig(&cfg.Capstone), logger.Log)

	// 初始化并启动定时任务调度器
	taskScheduler := scheduler.NewScheduler(services.Invitation, logger.Log)
	if err := taskScheduler.Start(&cfg.Scheduler); err != nil {
		logger.Warn("定时任务调度器启动失败", zap.Error(err))
	}

	// 设置路由
	r := router.Setup(cfg, services, jwt.NewManager(&cfg.Auth.JWT))

	// 创建HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("%s 服务启动成功", cfg.Server.Name),
			zap.String("address", addr),
			zap.String("mode", cfg.Server.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("服务器启动失败", zap.Error(err))
		taskScheduler.Stop()
		return err
	}

	logger.Info("服务正在关闭...")

	taskScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务已关闭")
	return nil
}
