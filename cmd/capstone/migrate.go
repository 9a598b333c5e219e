package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"capstone/internal/pkg/database"
	"capstone/internal/pkg/logger"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "迁移数据库表结构",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Close()
			}()

			if err := database.Init(&cfg.Database); err != nil {
				return fmt.Errorf("初始化数据库失败: %w", err)
			}
			defer func() {
				_ = database.Close()
			}()

			if err := database.AutoMigrate(database.GetDB()); err != nil {
				return err
			}
			logger.Info(fmt.Sprintf("数据库迁移完成, 共 %d 张表", len(database.Models())))
			return nil
		},
	}
}
